package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ferrost/identity-core/internal/config"
)

// PasswordCredentialStore stores and verifies password credentials. A user
// may hold any number of concurrently valid credentials: adding one never
// checks or supersedes the ones already stored, and nothing here removes
// them.
type PasswordCredentialStore struct {
	config *config.CredentialConfig
	log    *zap.Logger
	creds  CredentialRepository
}

func NewPasswordCredentialStore(cfg *config.CredentialConfig, log *zap.Logger, creds CredentialRepository) *PasswordCredentialStore {
	return &PasswordCredentialStore{
		config: cfg,
		log:    log,
		creds:  creds,
	}
}

// AddCredential hashes plaintext at the configured cost and inserts a new
// credential row for the user.
func (s *PasswordCredentialStore) AddCredential(ctx context.Context, user User, plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.creds.AddPassword(ctx, user.ID, hash)
}

// Verify tests candidate against every stored hash for the user in store
// order. By default it stops at the first match, which leaks timing
// correlated with the matching slot; the constant_scan setting keeps
// comparing through the whole set instead. An empty credential set verifies
// to false. A hash that fails to parse is a store corruption and is returned
// as an error, never folded into a false result.
func (s *PasswordCredentialStore) Verify(ctx context.Context, user User, candidate string) (bool, error) {
	hashes, err := s.creds.ListPasswords(ctx, user.ID)
	if err != nil {
		return false, err
	}

	matched := false
	for _, hash := range hashes {
		// Each comparison costs a full bcrypt run; honor the caller's
		// deadline between slots.
		if err := ctx.Err(); err != nil {
			return false, err
		}

		err := bcrypt.CompareHashAndPassword(hash, []byte(candidate))
		switch {
		case err == nil:
			if !s.config.ConstantScan {
				return true, nil
			}
			matched = true
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			// Wrong candidate for this slot; keep scanning.
		default:
			return false, fmt.Errorf("compare password hash: %w", err)
		}
	}
	return matched, nil
}
