package handler

import (
	"context"
	"strings"

	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/middleware"
	"study-deck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubscriptionHandler serves premium upgrade requests for users and admins.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
}

func NewSubscriptionHandler(subscriptions service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// SubmitProof godoc
// @Summary Submit a payment screenshot
// @Tags subscription
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param screenshot formData file true "PNG, JPEG or WebP screenshot"
// @Success 201 {object} dto.SubscriptionRequestResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscription/proof [post]
func (h *SubscriptionHandler) SubmitProof(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	upload, err := readUpload(c, "screenshot")
	if err != nil {
		return err
	}
	resp, err := h.subscriptions.SubmitPaymentProof(c.UserContext(), userID, upload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetStatus godoc
// @Summary Get my subscription status
// @Tags subscription
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.ProfileResponse
// @Router /subscription [get]
func (h *SubscriptionHandler) GetStatus(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	resp, err := h.subscriptions.GetMyStatus(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListRequests godoc
// @Summary List subscription requests
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "pending, approved or rejected"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Param page query int false "1-based page, overrides offset"
// @Success 200 {object} dto.SubscriptionRequestListResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /admin/subscriptions [get]
func (h *SubscriptionHandler) ListRequests(c *fiber.Ctx) error {
	page := dto.Pagination{
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
		Page:   c.QueryInt("page"),
	}
	resp, err := h.subscriptions.ListRequests(c.UserContext(), c.Query("status"), page)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Approve godoc
// @Summary Approve a subscription request
// @Description Marks the request approved and upgrades the user to premium
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param requestID path string true "Request ID"
// @Param request body dto.ReviewSubscriptionRequest false "Optional note"
// @Success 200 {object} dto.SubscriptionRequestResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /admin/subscriptions/{requestID}/approve [post]
func (h *SubscriptionHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, h.subscriptions.Approve)
}

// Reject godoc
// @Summary Reject a subscription request
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param requestID path string true "Request ID"
// @Param request body dto.ReviewSubscriptionRequest false "Optional note"
// @Success 200 {object} dto.SubscriptionRequestResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /admin/subscriptions/{requestID}/reject [post]
func (h *SubscriptionHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, h.subscriptions.Reject)
}

type reviewFunc func(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error)

func (h *SubscriptionHandler) review(c *fiber.Ctx, fn reviewFunc) error {
	adminID := middleware.UserID(c)
	requestID, err := idParam(c, "requestID")
	if err != nil {
		return err
	}
	var req dto.ReviewSubscriptionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("Request body must be JSON")
		}
	}
	resp, err := fn(c.UserContext(), adminID, requestID, strings.TrimSpace(req.Note))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
