package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study-deck/internal/cache"
	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/logger"

	"go.uber.org/zap"
)

// ProfileService owns the service-side user record: plan, quota and role.
type ProfileService interface {
	// EnsureProfile returns the caller's profile, creating it on first sight.
	EnsureProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error)
	// GetProfile always reads the database.
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	GetMe(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	PromoteAdmin(ctx context.Context, email string) (*domain.Profile, error)
	Invalidate(ctx context.Context, userID string)
}

type profileService struct {
	repo      domain.ProfileRepository
	cache     domain.Cache
	ttl       time.Duration
	freeLimit int
}

func NewProfileService(repo domain.ProfileRepository, c domain.Cache, ttl time.Duration, freeUploadLimit int) ProfileService {
	return &profileService{repo: repo, cache: c, ttl: ttl, freeLimit: freeUploadLimit}
}

func (s *profileService) EnsureProfile(ctx context.Context, identity domain.Identity) (*domain.Profile, error) {
	if identity.UserID == "" {
		return nil, domain.NewUnauthorizedError("Missing user identity")
	}
	key := cache.ProfileKey(identity.UserID)

	var cached domain.Profile
	if getCachedJSON(ctx, s.cache, key, &cached) && cached.Email == identity.Email {
		return &cached, nil
	}

	existing, err := s.repo.GetProfileByID(ctx, identity.UserID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load profile", err)
	}
	if existing == nil || existing.Email != identity.Email {
		if err := s.repo.UpsertProfile(ctx, &domain.Profile{
			ID:    identity.UserID,
			Email: identity.Email,
			Role:  domain.RoleUser,
		}); err != nil {
			return nil, domain.NewInternalError("Failed to create profile", err)
		}
		if existing == nil {
			logger.Get().Info("Created profile", zap.String("userID", identity.UserID))
		}
		existing, err = s.repo.GetProfileByID(ctx, identity.UserID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to load profile", err)
		}
		if existing == nil {
			return nil, domain.NewInternalError("Profile missing after upsert", nil)
		}
	}

	setCachedJSON(ctx, s.cache, key, existing, s.ttl)
	return existing, nil
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.repo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load profile", err)
	}
	if profile == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("Profile not found: %s", userID))
	}
	return profile, nil
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(profile, s.freeLimit), nil
}

func (s *profileService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	return profile.IsAdmin(), nil
}

func (s *profileService) PromoteAdmin(ctx context.Context, email string) (*domain.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("email")}
	}
	profile, err := s.repo.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up profile", err)
	}
	if profile == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("No profile with email %s. The user must sign in once first", email))
	}
	if profile.IsAdmin() {
		return profile, nil
	}
	if err := s.repo.SetRole(ctx, profile.ID, domain.RoleAdmin); err != nil {
		return nil, domain.NewInternalError("Failed to promote profile", err)
	}
	profile.Role = domain.RoleAdmin
	s.Invalidate(ctx, profile.ID)
	logger.Get().Info("Promoted profile to admin", zap.String("userID", profile.ID))
	return profile, nil
}

func (s *profileService) Invalidate(ctx context.Context, userID string) {
	invalidateCached(ctx, s.cache, cache.ProfileKey(userID))
}

// toProfileResponse leaves UploadLimit nil for premium profiles.
func toProfileResponse(p *domain.Profile, freeLimit int) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		ID:           p.ID,
		Email:        p.Email,
		Role:         string(p.Role),
		IsPremium:    p.IsPremium,
		PremiumSince: p.PremiumSince,
		UploadCount:  p.UploadCount,
	}
	if !p.IsPremium {
		limit := freeLimit
		resp.UploadLimit = &limit
	}
	return resp
}
