package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ferrost/identity-core/internal/database"
	"github.com/ferrost/identity-core/internal/identity"
	"github.com/ferrost/identity-core/internal/migration"
	"github.com/ferrost/identity-core/internal/server"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		fx.Provide(newLogger),
		fx.Provide(server.LoadConfig),

		database.Module(),
		migration.Module(),
		identity.NewModule(),

		fx.Provide(server.NewServer),
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			srv.Stop()
			return nil
		},
	})
}
