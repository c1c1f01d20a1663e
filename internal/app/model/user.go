package model

import "time"

// User is an owning principal. Links reference users by ID and are
// never reassigned.
type User struct {
	ID           uint      `db:"id" gorm:"primaryKey" json:"id"`
	Email        string    `db:"email" gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `db:"password_hash" gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `db:"created_at" gorm:"autoCreateTime" json:"created_at"`
}
