package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/careline-api/internal/config"
	"github.com/jwalitptl/careline-api/internal/handler/health"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/internal/repository/memory"
	"github.com/jwalitptl/careline-api/internal/repository/postgres"
	"github.com/jwalitptl/careline-api/pkg/logger"
)

type app struct {
	configPath string
	cfg        *config.Config
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "careline-api",
		Short:         "Doctor and patient triage API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config file")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
	)
	return root
}

// storage bundles the repositories with their lifecycle hooks.
type storage struct {
	repos *repository.Repositories
	db    *sqlx.DB
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports database reachability. The memory store is always ready.
func (s *storage) Ping(ctx context.Context) error {
	if s.db != nil {
		return s.db.PingContext(ctx)
	}
	return nil
}

var _ health.Checker = (*storage)(nil)

func (a *app) openStorage(ctx context.Context) (*storage, error) {
	switch a.cfg.Database.Driver {
	case "memory":
		a.log.Warn("using in-memory storage, data is lost on restart")
		return &storage{repos: memory.New()}, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		return &storage{repos: postgres.New(db), db: db}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", a.cfg.Database.Driver)
	}
}
