package handler

import (
	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FlashcardHandler handles flashcard set HTTP requests
type FlashcardHandler struct {
	sets service.FlashcardService
}

func NewFlashcardHandler(sets service.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{sets: sets}
}

// CreateSet godoc
// @Summary Create a flashcard set from a document
// @Description Uploads a PDF, image or text file and generates flashcards from it
// @Tags sets
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "PDF, PNG, JPEG, WebP or plain text document"
// @Param title formData string false "Set title, defaults to the file name"
// @Success 201 {object} dto.FlashcardSetResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sets [post]
func (h *FlashcardHandler) CreateSet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	upload, err := readUpload(c, "file")
	if err != nil {
		return err
	}
	upload.Title = c.FormValue("title")

	resp, err := h.sets.CreateSetFromUpload(c.UserContext(), userID, upload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListSets godoc
// @Summary List my flashcard sets
// @Tags sets
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.FlashcardSetListResponse
// @Router /sets [get]
func (h *FlashcardHandler) ListSets(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	resp, err := h.sets.ListSets(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetSet godoc
// @Summary Get a flashcard set with its cards
// @Tags sets
// @Produce json
// @Security ApiKeyAuth
// @Param setID path string true "Set ID"
// @Success 200 {object} dto.FlashcardSetResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sets/{setID} [get]
func (h *FlashcardHandler) GetSet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	resp, err := h.sets.GetSet(c.UserContext(), userID, setID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RenameSet godoc
// @Summary Rename a flashcard set
// @Tags sets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param setID path string true "Set ID"
// @Param request body dto.RenameSetRequest true "New title"
// @Success 200 {object} dto.FlashcardSetResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sets/{setID} [patch]
func (h *FlashcardHandler) RenameSet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	var req dto.RenameSetRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body must be JSON with a title")
	}
	resp, err := h.sets.RenameSet(c.UserContext(), userID, setID, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteSet godoc
// @Summary Delete a flashcard set
// @Description Deletes the set, its cards and the stored source document
// @Tags sets
// @Security ApiKeyAuth
// @Param setID path string true "Set ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sets/{setID} [delete]
func (h *FlashcardHandler) DeleteSet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	if err := h.sets.DeleteSet(c.UserContext(), userID, setID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
