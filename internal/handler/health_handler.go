package handler

import (
	"context"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache domain.Cache
}

func NewHealthHandler(db Pinger, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health godoc
// @Summary Health check
// @Description Pings the database and Redis
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "ok", Cache: "ok"}
	if err := h.db.PingContext(ctx); err != nil {
		logger.Get().Warn("Database ping failed", zap.Error(err))
		resp.Status, resp.Database = "degraded", "unreachable"
	}
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Cache ping failed", zap.Error(err))
		resp.Status, resp.Cache = "degraded", "unreachable"
	}
	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
