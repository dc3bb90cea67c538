package identity

import (
	"context"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/ferrost/identity-core/internal/config"
)

// TOTPEnroller generates and stores per-user TOTP secrets. It backs operator
// tooling only; the verification path treats user_totp as read-only.
type TOTPEnroller struct {
	config *config.CredentialConfig
	creds  CredentialRepository
}

func NewTOTPEnroller(cfg *config.CredentialConfig, creds CredentialRepository) *TOTPEnroller {
	return &TOTPEnroller{
		config: cfg,
		creds:  creds,
	}
}

// Enroll generates a fresh secret for the user, stores it, and returns the
// key so the caller can render the otpauth URL or a QR image. An existing
// secret is replaced.
func (e *TOTPEnroller) Enroll(ctx context.Context, user User) (*otp.Key, error) {
	issuer := e.config.TOTPIssuer
	if issuer == "" {
		issuer = "identity-core"
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: user.Identity,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	if err := e.creds.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}
	return key, nil
}
