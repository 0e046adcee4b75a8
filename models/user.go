package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a player account. Passwords are stored as bcrypt hashes only.
// Level and Rank are derived from XP and rewritten on every grant; they never
// hold values that diverge from the stored XP.
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:64;not null" json:"name"`
	Email        string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"size:255;not null" json:"-"`
	XP           int             `gorm:"column:xp;default:0" json:"xp"`
	Level        int             `gorm:"default:1" json:"level"`
	Rank         string          `gorm:"size:32" json:"rank"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Progress     []ProgressEntry `json:"-"`
}

// BeforeCreate hook ensures timestamps and derived fields are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Level == 0 {
		u.Level = LevelForXP(u.XP)
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
