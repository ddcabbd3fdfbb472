package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a user account in the system.
// Users authenticate with a local password and receive a bearer token.
// A user belongs to at most one group; no group means no access.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user account is active and can log in.
	Active bool
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`
	// GroupID is the ID of the group the user belongs to (nil means no access).
	GroupID *uint `gorm:"column:group_id"`
	// Group is the associated group (loaded via foreign key).
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
