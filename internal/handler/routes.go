package handler

import "github.com/gofiber/fiber/v2"

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Health        *HealthHandler
	Profile       *ProfileHandler
	Flashcards    *FlashcardHandler
	Quiz          *QuizHandler
	Subscriptions *SubscriptionHandler
}

// RegisterRoutes mounts /health and the /api routes. protected authenticates the
// caller; requireAdmin runs after it on admin routes.
func RegisterRoutes(app fiber.Router, h Handlers, protected, requireAdmin fiber.Handler) {
	app.Get("/health", h.Health.Health)

	api := app.Group("/api", protected)
	api.Get("/me", h.Profile.GetMe)

	sets := api.Group("/sets")
	sets.Post("/", h.Flashcards.CreateSet)
	sets.Get("/", h.Flashcards.ListSets)
	sets.Get("/:setID", h.Flashcards.GetSet)
	sets.Patch("/:setID", h.Flashcards.RenameSet)
	sets.Delete("/:setID", h.Flashcards.DeleteSet)
	sets.Post("/:setID/quiz", h.Quiz.StartQuiz)
	sets.Get("/:setID/attempts", h.Quiz.ListAttempts)

	quiz := api.Group("/quiz")
	quiz.Post("/:sessionID/answers", h.Quiz.SubmitAnswer)
	quiz.Post("/:sessionID/restart", h.Quiz.RestartQuiz)
	quiz.Post("/:sessionID/finish", h.Quiz.FinishQuiz)

	api.Post("/subscription/proof", h.Subscriptions.SubmitProof)
	api.Get("/subscription", h.Subscriptions.GetStatus)

	admin := api.Group("/admin", requireAdmin)
	admin.Get("/subscriptions", h.Subscriptions.ListRequests)
	admin.Post("/subscriptions/:requestID/approve", h.Subscriptions.Approve)
	admin.Post("/subscriptions/:requestID/reject", h.Subscriptions.Reject)
}
