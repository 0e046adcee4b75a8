package models

import "time"

// ProgressEntry records one completed activity for a user. Entries are
// append-only; nothing in the application updates or deletes them.
type ProgressEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:64;not null" json:"tipus"`
	Name      string    `gorm:"size:255;not null" json:"nom"`
	Score     int       `json:"puntuacio"`
	Completed bool      `gorm:"default:false" json:"completat"`
	CreatedAt time.Time `json:"created_at"`
}
