package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/repository/models"
	"study-deck/internal/util"

	"github.com/jmoiron/sqlx"
)

const subscriptionColumns = `id, user_id, screenshot_path, status, note, reviewed_by, reviewed_at, created_at`

const joinedSubscriptionColumns = `r.id, r.user_id, r.screenshot_path, r.status, r.note, r.reviewed_by, r.reviewed_at, r.created_at, p.email AS user_email`

type sqlxSubscriptionRepository struct {
	db *sqlx.DB
}

func NewSQLXSubscriptionRepository(db *sqlx.DB) domain.SubscriptionRepository {
	return &sqlxSubscriptionRepository{db: db}
}

func toDomainSubscriptionRequest(m *models.SubscriptionRequest) *domain.SubscriptionRequest {
	return &domain.SubscriptionRequest{
		ID:             m.ID,
		UserID:         m.UserID,
		ScreenshotPath: m.ScreenshotPath,
		Status:         domain.SubscriptionStatus(m.Status),
		Note:           m.Note.String,
		ReviewedBy:     m.ReviewedBy.String,
		ReviewedAt:     util.NullTimeToPtr(m.ReviewedAt),
		CreatedAt:      m.CreatedAt,
		UserEmail:      m.UserEmail.String,
	}
}

func (r *sqlxSubscriptionRepository) CreateRequest(ctx context.Context, req *domain.SubscriptionRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	if req.Status == "" {
		req.Status = domain.SubscriptionPending
	}
	m := &models.SubscriptionRequest{
		ID:             req.ID,
		UserID:         req.UserID,
		ScreenshotPath: req.ScreenshotPath,
		Status:         string(req.Status),
		Note:           util.StringToNullString(req.Note),
		CreatedAt:      req.CreatedAt,
	}
	query := `INSERT INTO subscription_requests (id, user_id, screenshot_path, status, note, created_at)
	          VALUES (:id, :user_id, :screenshot_path, :status, :note, :created_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		// Only one pending request per user is allowed by a partial unique index.
		if isUniqueViolation(err) {
			return domain.NewError(domain.CodeConflict, "A payment proof is already waiting for review", err)
		}
		return fmt.Errorf("failed to create subscription request: %w", err)
	}
	return nil
}

func (r *sqlxSubscriptionRepository) GetRequestByID(ctx context.Context, id string) (*domain.SubscriptionRequest, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscription_requests WHERE id = $1`
	return r.getOne(ctx, "get subscription request by id", query, id)
}

func (r *sqlxSubscriptionRepository) GetLatestRequestByUser(ctx context.Context, userID string) (*domain.SubscriptionRequest, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscription_requests
	          WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, "get latest subscription request", query, userID)
}

func (r *sqlxSubscriptionRepository) getOne(ctx context.Context, op, query string, arg string) (*domain.SubscriptionRequest, error) {
	var m models.SubscriptionRequest
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return toDomainSubscriptionRequest(&m), nil
}

func (r *sqlxSubscriptionRepository) ListRequests(ctx context.Context, status domain.SubscriptionStatus, limit, offset int) ([]*domain.SubscriptionRequest, int, error) {
	exec := GetExecutor(ctx, r.db)

	// An empty status matches every row.
	where := ` WHERE ($1 = '' OR status = $1)`

	var total int
	if err := exec.GetContext(ctx, &total, `SELECT COUNT(*) FROM subscription_requests`+where, string(status)); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscription requests: %w", err)
	}
	if total == 0 {
		return []*domain.SubscriptionRequest{}, 0, nil
	}

	var rows []models.SubscriptionRequest
	query := `SELECT ` + joinedSubscriptionColumns + `
	          FROM subscription_requests r LEFT JOIN profiles p ON p.id = r.user_id
	          WHERE ($1 = '' OR r.status = $1)
	          ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`
	if err := exec.SelectContext(ctx, &rows, query, string(status), limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list subscription requests: %w", err)
	}
	out := make([]*domain.SubscriptionRequest, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainSubscriptionRequest(&rows[i]))
	}
	return out, total, nil
}

// ReviewRequest only touches rows still pending, so two admins cannot both review one request.
func (r *sqlxSubscriptionRepository) ReviewRequest(ctx context.Context, id string, status domain.SubscriptionStatus, reviewerID, note string, reviewedAt time.Time) (bool, error) {
	query := `UPDATE subscription_requests
	          SET status = $2, reviewed_by = $3, note = $4, reviewed_at = $5
	          WHERE id = $1 AND status = 'pending'`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		id, string(status), util.StringToNullString(reviewerID), util.StringToNullString(note), reviewedAt)
	if err != nil {
		return false, fmt.Errorf("failed to review subscription request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to review subscription request: %w", err)
	}
	return n == 1, nil
}
