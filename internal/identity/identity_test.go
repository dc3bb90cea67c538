package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ferrost/identity-core/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.CredentialConfig {
	return &config.CredentialConfig{
		// MinCost keeps the hashing fast under test; production uses 12.
		BcryptCost: bcrypt.MinCost,
		TOTPSkew:   1,
		TOTPIssuer: "identity-core-test",
	}
}

type testFixture struct {
	users     *mockUserRepository
	creds     *mockCredentialRepository
	passwords *PasswordCredentialStore
	totp      *TOTPVerifier
	service   *Service
}

func newTestFixture(t *testing.T) *testFixture {
	cfg := newTestConfig()
	users := newMockUserRepository()
	creds := newMockCredentialRepository()
	passwords := NewPasswordCredentialStore(cfg, newTestLogger(t), creds)
	totp := NewTOTPVerifier(cfg, creds)

	return &testFixture{
		users:     users,
		creds:     creds,
		passwords: passwords,
		totp:      totp,
		service:   NewService(newTestLogger(t), users, passwords, totp),
	}
}
