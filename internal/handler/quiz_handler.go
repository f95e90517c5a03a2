package handler

import (
	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	quizzes service.QuizService
}

func NewQuizHandler(quizzes service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// StartQuiz godoc
// @Summary Start a quiz
// @Description Builds a shuffled multiple-choice quiz from a flashcard set
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param setID path string true "Set ID"
// @Success 201 {object} dto.QuizSessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /sets/{setID}/quiz [post]
func (h *QuizHandler) StartQuiz(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	resp, err := h.quizzes.StartQuiz(c.UserContext(), userID, setID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListAttempts godoc
// @Summary List my quiz attempts for a set
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param setID path string true "Set ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Param page query int false "1-based page, overrides offset"
// @Success 200 {object} dto.QuizAttemptsResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sets/{setID}/attempts [get]
func (h *QuizHandler) ListAttempts(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	setID, err := idParam(c, "setID")
	if err != nil {
		return err
	}
	var page dto.Pagination
	if err := c.QueryParser(&page); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("pagination", c.Request().URI().QueryArgs().String())}
	}
	resp, err := h.quizzes.ListAttempts(c.UserContext(), userID, setID, page)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAnswer godoc
// @Summary Answer a quiz question
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sessionID path string true "Quiz session ID"
// @Param request body dto.SubmitAnswerRequest true "Question and selected option"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quiz/{sessionID}/answers [post]
func (h *QuizHandler) SubmitAnswer(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	sessionID, err := idParam(c, "sessionID")
	if err != nil {
		return err
	}
	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Request body must be JSON")
	}
	var verrs domain.ValidationErrors
	if req.QuestionIndex == nil {
		verrs = append(verrs, domain.NewMissingFieldError("question_index"))
	}
	if req.SelectedIndex == nil {
		verrs = append(verrs, domain.NewMissingFieldError("selected_index"))
	}
	if len(verrs) > 0 {
		return verrs
	}

	resp, err := h.quizzes.SubmitAnswer(c.UserContext(), userID, sessionID, *req.QuestionIndex, *req.SelectedIndex)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RestartQuiz godoc
// @Summary Restart a quiz
// @Description Discards the session and reshuffles a new one from the same set
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param sessionID path string true "Quiz session ID"
// @Success 201 {object} dto.QuizSessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{sessionID}/restart [post]
func (h *QuizHandler) RestartQuiz(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	sessionID, err := idParam(c, "sessionID")
	if err != nil {
		return err
	}
	resp, err := h.quizzes.RestartQuiz(c.UserContext(), userID, sessionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// FinishQuiz godoc
// @Summary Finish a quiz
// @Description Scores the session, records the attempt and ends the session
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param sessionID path string true "Quiz session ID"
// @Success 200 {object} dto.QuizResultResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{sessionID}/finish [post]
func (h *QuizHandler) FinishQuiz(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	sessionID, err := idParam(c, "sessionID")
	if err != nil {
		return err
	}
	resp, err := h.quizzes.FinishQuiz(c.UserContext(), userID, sessionID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
