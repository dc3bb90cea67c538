package identity

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ferrost/identity-core/internal/config"
)

// NewModule returns the identity module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *gorm.DB) UserRepository {
					return NewUserRepository(db)
				},
			),
			fx.Annotate(
				func(db *gorm.DB) CredentialRepository {
					return NewCredentialRepository(db)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, log *zap.Logger, creds CredentialRepository) *PasswordCredentialStore {
					return NewPasswordCredentialStore(&cfg.Credentials, log, creds)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, creds CredentialRepository) *TOTPVerifier {
					return NewTOTPVerifier(&cfg.Credentials, creds)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, creds CredentialRepository) *TOTPEnroller {
					return NewTOTPEnroller(&cfg.Credentials, creds)
				},
			),
			fx.Annotate(
				func(log *zap.Logger, users UserRepository, passwords *PasswordCredentialStore, totp *TOTPVerifier) *Service {
					return NewService(log, users, passwords, totp)
				},
			),
		),
	)
}
