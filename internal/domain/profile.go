package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is what a verified platform access token tells us about the caller.
type Identity struct {
	UserID string
	Email  string
}

// Profile is the service-side view of a platform user: plan and role.
type Profile struct {
	ID           string
	Email        string
	Role         Role
	IsPremium    bool
	UploadCount  int
	PremiumSince *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// CanUpload reports whether the profile may upload another document under a free plan limit.
func (p *Profile) CanUpload(freeLimit int) bool {
	return p.IsPremium || p.UploadCount < freeLimit
}

type ProfileRepository interface {
	GetProfileByID(ctx context.Context, id string) (*Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)
	// UpsertProfile inserts the profile or refreshes the email of an existing one.
	UpsertProfile(ctx context.Context, profile *Profile) error
	// ConsumeUpload bumps the upload count unless a free profile is already at freeLimit.
	// It returns false when the quota is exhausted.
	ConsumeUpload(ctx context.Context, id string, freeLimit int) (bool, error)
	SetPremium(ctx context.Context, id string, since time.Time) error
	SetRole(ctx context.Context, id string, role Role) error
}
