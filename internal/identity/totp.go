package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/ferrost/identity-core/internal/config"
)

const totpPeriod = 30

// TOTPVerifier verifies time-based one-time codes against a per-user secret.
type TOTPVerifier struct {
	config *config.CredentialConfig
	creds  CredentialRepository
}

func NewTOTPVerifier(cfg *config.CredentialConfig, creds CredentialRepository) *TOTPVerifier {
	return &TOTPVerifier{
		config: cfg,
		creds:  creds,
	}
}

// Verify reports whether token matches the user's enrolled secret within the
// configured skew window. A user without a secret simply has no second
// factor: the result is false, not an error. An unparsable token is likewise
// a plain non-match.
func (v *TOTPVerifier) Verify(ctx context.Context, user User, token string) (bool, error) {
	secret, ok, err := v.creds.TOTPSecret(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	valid, err := totp.ValidateCustom(token, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      v.config.TOTPSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		if errors.Is(err, otp.ErrValidateInputInvalidLength) {
			return false, nil
		}
		return false, fmt.Errorf("validate totp code: %w", err)
	}
	return valid, nil
}
