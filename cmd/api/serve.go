package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	advicehandler "github.com/jwalitptl/careline-api/internal/handler/advice"
	chathandler "github.com/jwalitptl/careline-api/internal/handler/chat"
	profilehandler "github.com/jwalitptl/careline-api/internal/handler/doctorprofile"
	"github.com/jwalitptl/careline-api/internal/handler/health"
	casehandler "github.com/jwalitptl/careline-api/internal/handler/patientcase"
	userhandler "github.com/jwalitptl/careline-api/internal/handler/user"
	"github.com/jwalitptl/careline-api/internal/middleware"
	"github.com/jwalitptl/careline-api/internal/repository/postgres"
	"github.com/jwalitptl/careline-api/internal/router"
	"github.com/jwalitptl/careline-api/internal/service/advice"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	"github.com/jwalitptl/careline-api/internal/service/chat"
	"github.com/jwalitptl/careline-api/internal/service/doctorprofile"
	"github.com/jwalitptl/careline-api/internal/service/event"
	"github.com/jwalitptl/careline-api/internal/service/patientcase"
	"github.com/jwalitptl/careline-api/internal/service/seed"
	"github.com/jwalitptl/careline-api/internal/service/user"
	"github.com/jwalitptl/careline-api/pkg/identity"
	"github.com/jwalitptl/careline-api/pkg/llm"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.db != nil {
		applied, err := postgres.NewMigrator(store.db).Up(ctx)
		if err != nil {
			return err
		}
		if applied > 0 {
			a.log.Info("migrations applied", "count", applied)
		}
	}

	if cfg.Seed.OnStartup {
		n, err := seed.NewSeeder(store.repos.Cases).Run(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed cases: %w", err)
		}
		if n > 0 {
			a.log.Info("seeded sample cases", "count", n)
		}
	}

	auditor := audit.NewService(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		Path:       cfg.Audit.Path,
		MaxSizeMB:  cfg.Audit.MaxSizeMB,
		MaxBackups: cfg.Audit.MaxBackups,
		MaxAgeDays: cfg.Audit.MaxAgeDays,
		Compress:   cfg.Audit.Compress,
	})
	defer auditor.Close()

	verifier, err := identity.NewJWTVerifier(identity.Config{
		Issuer:      cfg.Auth.Issuer,
		Audience:    cfg.Auth.Audience,
		JWKSURL:     cfg.Auth.JWKSURL,
		SigningKey:  []byte(cfg.Auth.SigningKey),
		KeyCacheTTL: cfg.Auth.KeyCacheTTL,
		Leeway:      cfg.Auth.Leeway,
	})
	if err != nil {
		return err
	}

	// a nil generator makes the assistant answer 503
	var generator llm.Generator
	if cfg.AI.APIKey != "" {
		gemini, err := llm.NewGemini(ctx, llm.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
		if err != nil {
			return err
		}
		generator = gemini
	} else {
		a.log.Warn("no AI API key configured, the assistant is disabled")
	}

	repos := store.repos
	events := event.NewService(repos.Outbox)
	userSvc := user.NewService(repos.Users, repos.DoctorProfiles, auditor)
	caseSvc := patientcase.NewService(repos.Cases, events, auditor, patientcase.Options{
		AllowAnonymous: cfg.Intake.AllowAnonymous,
	})

	r := router.NewRouter(
		middleware.NewAuthMiddleware(verifier, userSvc),
		health.NewHandler(map[string]health.Checker{"database": store}),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        cfg.RateLimit.RequestsPerSecond,
			RateBurst:        cfg.RateLimit.Burst,
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			EnforceHTTPS:     cfg.Server.Environment == "production",
			MetricsEnabled:   cfg.Metrics.Enabled,
			MetricsPath:      cfg.Metrics.Path,
			MetricsPrefix:    cfg.Metrics.Namespace,
		},
		userhandler.NewHandler(userSvc),
		casehandler.NewHandler(caseSvc, cfg.Intake.AllowAnonymous),
		chathandler.NewHandler(chat.NewService(repos.Chats, repos.Cases, events, auditor)),
		advicehandler.NewHandler(advice.NewService(generator, auditor)),
		profilehandler.NewHandler(doctorprofile.NewService(repos.DoctorProfiles, auditor)),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("server exited")
	return nil
}
