package domain

import (
	"context"
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionApproved SubscriptionStatus = "approved"
	SubscriptionRejected SubscriptionStatus = "rejected"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionPending, SubscriptionApproved, SubscriptionRejected:
		return true
	}
	return false
}

// SubscriptionRequest is a user's claim to have paid for premium, backed by a
// payment screenshot that an admin reviews by hand.
type SubscriptionRequest struct {
	ID             string
	UserID         string
	ScreenshotPath string
	Status         SubscriptionStatus
	Note           string
	ReviewedBy     string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
	// UserEmail is filled by ListRequests only.
	UserEmail string
}

type SubscriptionRepository interface {
	// CreateRequest returns a CONFLICT error when the user already has a pending request.
	CreateRequest(ctx context.Context, req *SubscriptionRequest) error
	GetRequestByID(ctx context.Context, id string) (*SubscriptionRequest, error)
	GetLatestRequestByUser(ctx context.Context, userID string) (*SubscriptionRequest, error)
	// ListRequests returns one page of requests, newest first, with the requester's
	// email, and the total count. An empty status lists every request.
	ListRequests(ctx context.Context, status SubscriptionStatus, limit, offset int) ([]*SubscriptionRequest, int, error)
	// ReviewRequest moves a pending request to status. It returns false when the
	// request was no longer pending.
	ReviewRequest(ctx context.Context, id string, status SubscriptionStatus, reviewerID, note string, reviewedAt time.Time) (bool, error)
}
