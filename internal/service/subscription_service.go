package service

import (
	"context"
	"fmt"
	"time"

	"study-deck/internal/adapter/extract"
	"study-deck/internal/adapter/storage"
	"study-deck/internal/config"
	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/logger"
	"study-deck/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const signConcurrency = 8

// SubscriptionService handles manual premium upgrades: users upload a payment
// screenshot and an admin approves or rejects it.
type SubscriptionService interface {
	SubmitPaymentProof(ctx context.Context, userID string, upload domain.Upload) (*dto.SubscriptionRequestResponse, error)
	GetMyStatus(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	ListRequests(ctx context.Context, status string, page dto.Pagination) (*dto.SubscriptionRequestListResponse, error)
	Approve(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error)
	Reject(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error)
}

type subscriptionService struct {
	requests   domain.SubscriptionRepository
	profiles   domain.ProfileRepository
	profileSvc ProfileService
	tx         domain.TransactionManager
	store      domain.FileStore
	cfg        *config.Config
	now        func() time.Time
}

func NewSubscriptionService(
	requests domain.SubscriptionRepository,
	profiles domain.ProfileRepository,
	profileSvc ProfileService,
	tx domain.TransactionManager,
	store domain.FileStore,
	cfg *config.Config,
) SubscriptionService {
	return &subscriptionService{
		requests:   requests,
		profiles:   profiles,
		profileSvc: profileSvc,
		tx:         tx,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *subscriptionService) SubmitPaymentProof(ctx context.Context, userID string, upload domain.Upload) (*dto.SubscriptionRequestResponse, error) {
	profile, err := s.profileSvc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.IsPremium {
		return nil, domain.NewConflictError("You already have premium access")
	}
	latest, err := s.requests.GetLatestRequestByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load subscription requests", err)
	}
	if latest != nil && latest.Status == domain.SubscriptionPending {
		return nil, domain.NewConflictError("A payment proof is already waiting for review").
			WithContext("request_id", latest.ID)
	}

	if len(upload.Data) == 0 {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("screenshot")}
	}
	if limit := s.cfg.Plans.MaxUploadBytes; limit > 0 && int64(len(upload.Data)) > limit {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("File is larger than %d bytes", limit)).
			WithContext("max_bytes", limit)
	}
	detected, err := extract.DetectImage(upload.Data)
	if err != nil {
		return nil, err
	}

	req := &domain.SubscriptionRequest{
		ID:        util.NewULID(),
		UserID:    userID,
		Status:    domain.SubscriptionPending,
		CreatedAt: s.now(),
	}
	req.ScreenshotPath = storage.ObjectPath(userID, req.ID, upload.FileName, detected.Extension)
	bucket := s.cfg.Supabase.PaymentBucket

	if err := s.store.Upload(ctx, bucket, req.ScreenshotPath, detected.ContentType, upload.Data); err != nil {
		logger.Get().Error("Failed to store payment proof", zap.String("userID", userID), zap.Error(err))
		return nil, domain.NewStorageError(err)
	}
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), bucket, req.ScreenshotPath); rmErr != nil {
			logger.Get().Warn("Failed to remove orphaned payment proof", zap.String("path", req.ScreenshotPath), zap.Error(rmErr))
		}
		if domain.HasCode(err, domain.CodeConflict) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to save subscription request", err)
	}

	logger.Get().Info("Payment proof submitted", zap.String("userID", userID), zap.String("requestID", req.ID))
	resp := toSubscriptionResponse(req)
	return &resp, nil
}

func (s *subscriptionService) GetMyStatus(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileSvc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toProfileResponse(profile, s.cfg.Plans.FreeUploadLimit)

	latest, err := s.requests.GetLatestRequestByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load subscription requests", err)
	}
	if latest != nil {
		sub := toSubscriptionResponse(latest)
		resp.Subscription = &sub
	}
	return resp, nil
}

// ListRequests returns a page of requests for review. Each carries a short-lived
// signed screenshot URL and the requester's email.
func (s *subscriptionService) ListRequests(ctx context.Context, status string, page dto.Pagination) (*dto.SubscriptionRequestListResponse, error) {
	st := domain.SubscriptionStatus(status)
	if st != "" && !st.Valid() {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("status", status)}
	}
	page = page.Normalize()

	reqs, total, err := s.requests.ListRequests(ctx, st, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list subscription requests", err)
	}

	items := make([]dto.SubscriptionRequestResponse, len(reqs))
	var g errgroup.Group
	g.SetLimit(signConcurrency)
	for i, req := range reqs {
		items[i] = toSubscriptionResponse(req)
		items[i].Email = req.UserEmail
		g.Go(func() error {
			url, err := s.store.SignedURL(ctx, s.cfg.Supabase.PaymentBucket, req.ScreenshotPath, s.cfg.Supabase.SignedURLTTL)
			if err != nil {
				logger.Get().Warn("Failed to sign payment proof URL", zap.String("requestID", req.ID), zap.Error(err))
				return nil
			}
			items[i].ScreenshotURL = url
			return nil
		})
	}
	_ = g.Wait()

	return &dto.SubscriptionRequestListResponse{
		Requests:       items,
		PaginationInfo: dto.NewPaginationInfo(page, total),
	}, nil
}

// Approve marks the request approved and upgrades the profile in one transaction.
func (s *subscriptionService) Approve(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error) {
	return s.review(ctx, adminID, requestID, note, domain.SubscriptionApproved)
}

func (s *subscriptionService) Reject(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error) {
	return s.review(ctx, adminID, requestID, note, domain.SubscriptionRejected)
}

func (s *subscriptionService) review(ctx context.Context, adminID, requestID, note string, status domain.SubscriptionStatus) (*dto.SubscriptionRequestResponse, error) {
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load subscription request", err)
	}
	if req == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("Subscription request not found: %s", requestID))
	}
	if req.Status != domain.SubscriptionPending {
		return nil, reviewedConflict(req)
	}

	reviewedAt := s.now()
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := s.requests.ReviewRequest(txCtx, requestID, status, adminID, note, reviewedAt)
		if err != nil {
			return err
		}
		if !ok {
			return reviewedConflict(req)
		}
		if status == domain.SubscriptionApproved {
			return s.profiles.SetPremium(txCtx, req.UserID, reviewedAt)
		}
		return nil
	})
	if err != nil {
		if domain.HasCode(err, domain.CodeConflict) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to review subscription request", err)
	}

	s.profileSvc.Invalidate(ctx, req.UserID)
	logger.Get().Info("Subscription request reviewed",
		zap.String("requestID", requestID),
		zap.String("status", string(status)),
		zap.String("adminID", adminID))

	req.Status = status
	req.ReviewedBy = adminID
	req.ReviewedAt = &reviewedAt
	req.Note = note
	resp := toSubscriptionResponse(req)
	return &resp, nil
}

func reviewedConflict(req *domain.SubscriptionRequest) *domain.DomainError {
	return domain.NewConflictError("Subscription request has already been reviewed").
		WithContext("request_id", req.ID).
		WithContext("status", string(req.Status))
}

func toSubscriptionResponse(req *domain.SubscriptionRequest) dto.SubscriptionRequestResponse {
	return dto.SubscriptionRequestResponse{
		ID:         req.ID,
		UserID:     req.UserID,
		Status:     string(req.Status),
		Note:       req.Note,
		ReviewedBy: req.ReviewedBy,
		ReviewedAt: req.ReviewedAt,
		CreatedAt:  req.CreatedAt,
	}
}
