package handler

import (
	"study-deck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profiles service.ProfileService
}

func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMe godoc
// @Summary Get my profile
// @Description Returns the caller's plan, upload usage and role
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	resp, err := h.profiles.GetMe(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
