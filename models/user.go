package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that owns a channel. Passwords are stored as bcrypt hashes only.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Username         string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email            string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName         string         `gorm:"size:128;not null" json:"full_name"`
	PasswordHash     string         `gorm:"size:255" json:"-"`
	AvatarURL        string         `gorm:"size:512" json:"avatar_url"`
	CoverImageURL    string         `gorm:"size:512" json:"cover_image_url"`
	RefreshTokenHash string         `gorm:"size:255" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Videos           []Video        `json:"-"`
	Comments         []Comment      `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// PublicUser is the safe projection of User returned to other viewers.
type PublicUser struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// Public strips private fields for embedding in other payloads.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}
