package audit

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Service writes an append-only JSON audit trail of who touched which record.
type Service struct {
	logger *zap.Logger
	closer io.Closer
}

// NewService writes to a size-rotated file. A disabled config yields a no-op trail.
func NewService(cfg Config) *Service {
	if !cfg.Enabled || cfg.Path == "" {
		return NewNop()
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	s := NewWithWriter(zapcore.AddSync(rotator))
	s.closer = rotator
	return s
}

// NewWithWriter writes JSON entries to w.
func NewWithWriter(w zapcore.WriteSyncer) *Service {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, zapcore.InfoLevel)
	return &Service{logger: zap.New(core).Named("audit")}
}

func NewNop() *Service {
	return &Service{logger: zap.NewNop()}
}

type requestIDKey struct{}

// WithRequestID stores the request id that Log attaches to each entry.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Log records that actorID performed action on the entity.
func (s *Service) Log(ctx context.Context, actorID, action, entityType, entityID string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("actor_id", actorID),
		zap.String("action", action),
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID),
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		base = append(base, zap.String("request_id", id))
	}
	s.logger.Info(action, append(base, fields...)...)
}

func (s *Service) Close() error {
	_ = s.logger.Sync()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
