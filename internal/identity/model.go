package identity

import (
	"time"
)

// Status marks whether a user row is visible to reads. Rows are never
// physically deleted; deactivation flips the status and the row keeps its
// credentials.
type Status int16

const (
	StatusInactive Status = 0
	StatusActive   Status = 1
)

// User is the only shape handed to callers. Status stays inside this package.
type User struct {
	ID       int64
	Identity string
	Nickname string
	Created  time.Time
	Type     int16
}

// NewUser is the pre-persistence variant of User: no id, no creation time.
// Keeping it a distinct type means create-vs-update is decided by the
// operation called, not by inspecting the value.
type NewUser struct {
	Identity string
	Nickname string
	Type     int16
}

type userRecord struct {
	ID       int64  `gorm:"primaryKey"`
	Identity string `gorm:"not null;uniqueIndex:idx_users_identity,where:status = 1"`
	Nickname string
	Created  time.Time
	Type     int16  `gorm:"not null"`
	Status   Status `gorm:"not null;default:1"`
}

func (userRecord) TableName() string {
	return "users"
}

func (r userRecord) user() User {
	return User{
		ID:       r.ID,
		Identity: r.Identity,
		Nickname: r.Nickname,
		Created:  r.Created,
		Type:     r.Type,
	}
}

type passwordRecord struct {
	ID       int64  `gorm:"primaryKey"`
	UserID   int64  `gorm:"not null;index"`
	Password []byte `gorm:"not null"`
}

func (passwordRecord) TableName() string {
	return "user_passwords"
}

type totpRecord struct {
	UserID int64  `gorm:"primaryKey"`
	Secret string `gorm:"not null"`
}

func (totpRecord) TableName() string {
	return "user_totp"
}
