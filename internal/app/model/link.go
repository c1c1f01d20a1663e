package model

import "time"

// Link describes the core short-link entity stored in Postgres.
// ShortCode, TargetURL, OwnerID and ExpiresAt are fixed at creation;
// only IsActive and TotalClicks change afterwards.
type Link struct {
	ID          uint      `db:"id" gorm:"primaryKey"`
	ShortCode   string    `db:"short_code" gorm:"uniqueIndex;size:32;not null"`
	TargetURL   string    `db:"target_url" gorm:"type:text;not null"`
	OwnerID     uint      `db:"owner_id" gorm:"index;not null"`
	IsActive    bool      `db:"is_active" gorm:"not null;default:true"`
	TotalClicks int64     `db:"total_clicks" gorm:"not null;default:0"`
	ExpiresAt   time.Time `db:"expires_at" gorm:"index;not null"`
	CreatedAt   time.Time `db:"created_at" gorm:"autoCreateTime"`
}
