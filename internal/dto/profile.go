package dto

import "time"

type ProfileResponse struct {
	ID           string                       `json:"id"`
	Email        string                       `json:"email"`
	Role         string                       `json:"role"`
	IsPremium    bool                         `json:"is_premium"`
	PremiumSince *time.Time                   `json:"premium_since,omitempty"`
	UploadCount  int                          `json:"upload_count"`
	UploadLimit  *int                         `json:"upload_limit"` // null for premium
	Subscription *SubscriptionRequestResponse `json:"subscription,omitempty"`
}

type SubscriptionRequestResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Email         string     `json:"email,omitempty"`
	Status        string     `json:"status"`
	Note          string     `json:"note,omitempty"`
	ScreenshotURL string     `json:"screenshot_url,omitempty"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type SubscriptionRequestListResponse struct {
	Requests       []SubscriptionRequestResponse `json:"requests"`
	PaginationInfo PaginationInfo                `json:"pagination_info"`
}

// ReviewSubscriptionRequest is the optional body of approve/reject.
type ReviewSubscriptionRequest struct {
	Note string `json:"note"`
}
