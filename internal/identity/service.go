package identity

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service is the composition root over the repository and the two factor
// verifiers. It holds no state and caches nothing: each call resolves the
// identity, then delegates. A failed resolution surfaces as ErrUserNotFound
// and is never collapsed into a false verification result, so callers can
// tell "no such user" from "wrong credential".
//
// Verification carries its full cost on every call; throttling and lockout
// policy live outside this package.
type Service struct {
	log       *zap.Logger
	users     UserRepository
	passwords *PasswordCredentialStore
	totp      *TOTPVerifier
}

func NewService(log *zap.Logger, users UserRepository, passwords *PasswordCredentialStore, totp *TOTPVerifier) *Service {
	return &Service{
		log:       log,
		users:     users,
		passwords: passwords,
		totp:      totp,
	}
}

// Resolve looks up the active user for an identity string.
func (s *Service) Resolve(ctx context.Context, identity string) (User, error) {
	return s.users.GetByIdentity(ctx, identity)
}

// VerifyPassword resolves identity and checks password against the user's
// stored credentials.
func (s *Service) VerifyPassword(ctx context.Context, identity, password string) (bool, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		return false, err
	}
	return s.passwords.Verify(ctx, user, password)
}

// VerifyTOTP resolves identity and checks a one-time code against the user's
// enrolled secret.
func (s *Service) VerifyTOTP(ctx context.Context, identity, code string) (bool, error) {
	user, err := s.users.GetByIdentity(ctx, identity)
	if err != nil {
		return false, err
	}
	return s.totp.Verify(ctx, user, code)
}

// Register creates a user and stores its first password credential.
func (s *Service) Register(ctx context.Context, nu NewUser, password string) (User, error) {
	user, err := s.users.Create(ctx, nu)
	if err != nil {
		return User{}, err
	}

	if err := s.passwords.AddCredential(ctx, user, password); err != nil {
		return User{}, fmt.Errorf("store initial credential: %w", err)
	}

	s.log.Info("registered user",
		zap.Int64("user_id", user.ID),
		zap.String("identity", user.Identity))

	return user, nil
}
