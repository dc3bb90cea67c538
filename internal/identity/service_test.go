package identity

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Resolve(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	created, err := f.users.Create(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice", Type: 1})
	require.NoError(t, err)

	tests := []struct {
		name     string
		identity string
		wantErr  error
	}{
		{
			name:     "existing identity",
			identity: "alice@example.com",
		},
		{
			name:     "unknown identity",
			identity: "nobody@example.com",
			wantErr:  ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := f.service.Resolve(ctx, tt.identity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, created.ID, user.ID)
			assert.Equal(t, tt.identity, user.Identity)
		})
	}
}

func TestService_ResolveDuplicateIdentity(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	// Two active rows with the same identity means the store constraint is
	// gone; the lookup must report not-found instead of picking one.
	_, err := f.users.Create(ctx, NewUser{Identity: "dup@example.com", Nickname: "One", Type: 1})
	require.NoError(t, err)
	_, err = f.users.Create(ctx, NewUser{Identity: "dup@example.com", Nickname: "Two", Type: 1})
	require.NoError(t, err)

	_, err = f.service.Resolve(ctx, "dup@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_ResolveDeactivated(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	user, err := f.users.Create(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice", Type: 1})
	require.NoError(t, err)

	require.NoError(t, f.users.Deactivate(ctx, user.ID))

	_, err = f.service.Resolve(ctx, "alice@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_ReuseDeactivatedIdentity(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	// Uniqueness holds among active users only: once a user is deactivated
	// its identity is free to register again, and resolution finds the new
	// active row.
	old, err := f.users.Create(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice", Type: 1})
	require.NoError(t, err)
	require.NoError(t, f.users.Deactivate(ctx, old.ID))

	replacement, err := f.users.Create(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice II", Type: 1})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, replacement.ID)

	got, err := f.service.Resolve(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, got.ID)
	assert.Equal(t, "Alice II", got.Nickname)
}

func TestService_Register(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	before := time.Now()
	user, err := f.service.Register(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice", Type: 1}, "Secr3tPass!")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Identity)
	assert.Equal(t, "Alice", user.Nickname)
	assert.Equal(t, int16(1), user.Type)
	assert.False(t, user.Created.Before(before))

	ok, err := f.service.VerifyPassword(ctx, "alice@example.com", "Secr3tPass!")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_RegisterAssignsFreshIDs(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	first, err := f.service.Register(ctx, NewUser{Identity: "a@example.com", Nickname: "A", Type: 1}, "pw-a")
	require.NoError(t, err)
	second, err := f.service.Register(ctx, NewUser{Identity: "b@example.com", Nickname: "B", Type: 2}, "pw-b")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestService_VerifyPassword(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice", Type: 1}, "Secr3tPass!")
	require.NoError(t, err)

	tests := []struct {
		name     string
		identity string
		password string
		want     bool
		wantErr  error
	}{
		{
			name:     "correct password",
			identity: "alice@example.com",
			password: "Secr3tPass!",
			want:     true,
		},
		{
			name:     "wrong password",
			identity: "alice@example.com",
			password: "WrongPass",
			want:     false,
		},
		{
			// "no such user" must stay distinguishable from "wrong
			// credential".
			name:     "unknown identity",
			identity: "nobody@example.com",
			password: "Secr3tPass!",
			wantErr:  ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.service.VerifyPassword(ctx, tt.identity, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestService_VerifyTOTP(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	user, err := f.service.Register(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice", Type: 1}, "Secr3tPass!")
	require.NoError(t, err)

	key, err := NewTOTPEnroller(newTestConfig(), f.creds).Enroll(ctx, user)
	require.NoError(t, err)

	code, err := totp.GenerateCode(key.Secret(), time.Now().UTC())
	require.NoError(t, err)

	ok, err := f.service.VerifyTOTP(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.service.VerifyTOTP(ctx, "alice@example.com", "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.service.VerifyTOTP(ctx, "nobody@example.com", code)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_UpdateLeavesCreatedAndType(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	user, err := f.users.Create(ctx, NewUser{Identity: "alice@example.com", Nickname: "Alice", Type: 1})
	require.NoError(t, err)

	user.Identity = "alice@new.com"
	user.Nickname = "Alicia"
	_, err = f.users.Update(ctx, user)
	require.NoError(t, err)

	got, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.com", got.Identity)
	assert.Equal(t, "Alicia", got.Nickname)
	assert.Equal(t, user.Created, got.Created)
	assert.Equal(t, int16(1), got.Type)
}

func TestUserRepository_GetByIDUnknown(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.users.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_ListActive(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	a, err := f.users.Create(ctx, NewUser{Identity: "a@example.com", Nickname: "A", Type: 1})
	require.NoError(t, err)
	b, err := f.users.Create(ctx, NewUser{Identity: "b@example.com", Nickname: "B", Type: 1})
	require.NoError(t, err)

	require.NoError(t, f.users.Deactivate(ctx, a.ID))

	users, err := f.users.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, b.ID, users[0].ID)
}
