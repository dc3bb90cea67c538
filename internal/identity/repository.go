package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a lookup by id or identity matches no
// active row. A duplicate match (more than one active row, which would mean
// the store's uniqueness constraint failed us) is reported the same way
// rather than as a distinct error kind.
var ErrUserNotFound = errors.New("user not found")

// UserRepository gives access to user identity records. All reads see active
// users only; deactivated rows stay in the store but are invisible here.
type UserRepository interface {
	ListActive(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByIdentity(ctx context.Context, identity string) (User, error)
	Create(ctx context.Context, nu NewUser) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Deactivate(ctx context.Context, id int64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ListActive(ctx context.Context) ([]User, error) {
	var records []userRecord
	if err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.user())
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *userRepository) GetByIdentity(ctx context.Context, identity string) (User, error) {
	return r.getOne(ctx, "identity = ?", identity)
}

func (r *userRepository) getOne(ctx context.Context, cond string, arg interface{}) (User, error) {
	var records []userRecord
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Where("status = ?", StatusActive).
		Limit(2).
		Find(&records).Error; err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}

	// Zero rows and more than one row are indistinguishable to callers.
	if len(records) != 1 {
		return User{}, ErrUserNotFound
	}
	return records[0].user(), nil
}

func (r *userRepository) Create(ctx context.Context, nu NewUser) (User, error) {
	record := userRecord{
		Identity: nu.Identity,
		Nickname: nu.Nickname,
		Created:  time.Now(),
		Type:     nu.Type,
		Status:   StatusActive,
	}

	// Single INSERT; identity uniqueness is enforced by the store constraint,
	// not checked here.
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return record.user(), nil
}

func (r *userRepository) Update(ctx context.Context, u User) (User, error) {
	// Only identity and nickname are mutable; created and type are fixed at
	// creation. No re-fetch and no version check: the returned value is the
	// input.
	err := r.db.WithContext(ctx).
		Model(&userRecord{}).
		Where("id = ? AND status = ?", u.ID, StatusActive).
		Updates(map[string]interface{}{
			"identity": u.Identity,
			"nickname": u.Nickname,
		}).Error
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *userRepository) Deactivate(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).
		Model(&userRecord{}).
		Where("id = ?", id).
		Update("status", StatusInactive).Error
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}
