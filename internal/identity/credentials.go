package identity

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CredentialRepository persists the credential rows owned by a user: any
// number of password hashes and at most one TOTP secret. It shares the store
// handle with UserRepository but owns disjoint tables.
type CredentialRepository interface {
	AddPassword(ctx context.Context, userID int64, hash []byte) error
	// ListPasswords returns every stored hash for the user in store order.
	ListPasswords(ctx context.Context, userID int64) ([][]byte, error)
	// TOTPSecret reports the user's secret; ok is false when the second
	// factor is not enrolled.
	TOTPSecret(ctx context.Context, userID int64) (secret string, ok bool, err error)
	// SetTOTPSecret is an enrollment hook for operator tooling; the
	// verification path never writes secrets.
	SetTOTPSecret(ctx context.Context, userID int64, secret string) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) AddPassword(ctx context.Context, userID int64, hash []byte) error {
	record := passwordRecord{
		UserID:   userID,
		Password: hash,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("add password credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) ListPasswords(ctx context.Context, userID int64) ([][]byte, error) {
	var records []passwordRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list password credentials: %w", err)
	}

	hashes := make([][]byte, 0, len(records))
	for _, rec := range records {
		hashes = append(hashes, rec.Password)
	}
	return hashes, nil
}

func (r *credentialRepository) TOTPSecret(ctx context.Context, userID int64) (string, bool, error) {
	var record totpRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get totp secret: %w", err)
	}
	return record.Secret, true, nil
}

func (r *credentialRepository) SetTOTPSecret(ctx context.Context, userID int64, secret string) error {
	record := totpRecord{
		UserID: userID,
		Secret: secret,
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}
