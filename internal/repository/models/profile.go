package models

import (
	"database/sql"
	"time"
)

// Profile maps the profiles table. ID is the platform user UUID.
type Profile struct {
	ID           string       `db:"id"`
	Email        string       `db:"email"`
	Role         string       `db:"role"`
	IsPremium    bool         `db:"is_premium"`
	UploadCount  int          `db:"upload_count"`
	PremiumSince sql.NullTime `db:"premium_since"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// SubscriptionRequest maps the subscription_requests table.
type SubscriptionRequest struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	ScreenshotPath string         `db:"screenshot_path"`
	Status         string         `db:"status"`
	Note           sql.NullString `db:"note"`
	ReviewedBy     sql.NullString `db:"reviewed_by"`
	ReviewedAt     sql.NullTime   `db:"reviewed_at"`
	CreatedAt      time.Time      `db:"created_at"`
	// UserEmail is only selected by listings that join profiles.
	UserEmail sql.NullString `db:"user_email"`
}
