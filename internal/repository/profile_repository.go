package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/repository/models"
	"study-deck/internal/util"

	"github.com/jmoiron/sqlx"
)

const profileColumns = `id, email, role, is_premium, upload_count, premium_since, created_at, updated_at`

type sqlxProfileRepository struct {
	db *sqlx.DB
}

func NewSQLXProfileRepository(db *sqlx.DB) domain.ProfileRepository {
	return &sqlxProfileRepository{db: db}
}

func toDomainProfile(m *models.Profile) *domain.Profile {
	if m == nil {
		return nil
	}
	return &domain.Profile{
		ID:           m.ID,
		Email:        m.Email,
		Role:         domain.Role(m.Role),
		IsPremium:    m.IsPremium,
		UploadCount:  m.UploadCount,
		PremiumSince: util.NullTimeToPtr(m.PremiumSince),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromDomainProfile(p *domain.Profile) *models.Profile {
	if p == nil {
		return nil
	}
	role := string(p.Role)
	if role == "" {
		role = string(domain.RoleUser)
	}
	return &models.Profile{
		ID:           p.ID,
		Email:        p.Email,
		Role:         role,
		IsPremium:    p.IsPremium,
		UploadCount:  p.UploadCount,
		PremiumSince: util.TimePtrToNullTime(p.PremiumSince),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *sqlxProfileRepository) GetProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	var m models.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}
	return toDomainProfile(&m), nil
}

func (r *sqlxProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var m models.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = $1 ORDER BY created_at LIMIT 1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return toDomainProfile(&m), nil
}

// UpsertProfile creates the row on first sight of a user. Later calls only refresh
// the email; plan and role are never overwritten here.
func (r *sqlxProfileRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	m := fromDomainProfile(profile)
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	query := `INSERT INTO profiles (` + profileColumns + `)
	          VALUES (:id, :email, :role, :is_premium, :upload_count, :premium_since, :created_at, :updated_at)
	          ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at
	          WHERE profiles.email IS DISTINCT FROM EXCLUDED.email`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *sqlxProfileRepository) ConsumeUpload(ctx context.Context, id string, freeLimit int) (bool, error) {
	query := `UPDATE profiles SET upload_count = upload_count + 1, updated_at = $3
	          WHERE id = $1 AND (is_premium OR upload_count < $2)`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, freeLimit, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to consume upload: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to consume upload: %w", err)
	}
	return n == 1, nil
}

func (r *sqlxProfileRepository) SetPremium(ctx context.Context, id string, since time.Time) error {
	query := `UPDATE profiles SET is_premium = TRUE, premium_since = COALESCE(premium_since, $2), updated_at = $2 WHERE id = $1`
	return r.execOne(ctx, "set premium", query, id, since)
}

func (r *sqlxProfileRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	query := `UPDATE profiles SET role = $2, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, "set role", query, id, string(role), time.Now())
}

func (r *sqlxProfileRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("Profile not found")
	}
	return nil
}
