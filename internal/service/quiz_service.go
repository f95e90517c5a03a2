package service

import (
	"context"
	"errors"
	"time"

	"study-deck/internal/config"
	"study-deck/internal/domain"
	"study-deck/internal/dto"
	"study-deck/internal/logger"
	"study-deck/internal/util"

	"go.uber.org/zap"
)

// QuizService runs multiple-choice quizzes over a user's flashcard sets.
type QuizService interface {
	StartQuiz(ctx context.Context, userID, setID string) (*dto.QuizSessionResponse, error)
	RestartQuiz(ctx context.Context, userID, sessionID string) (*dto.QuizSessionResponse, error)
	SubmitAnswer(ctx context.Context, userID, sessionID string, questionIndex, selectedIndex int) (*dto.SubmitAnswerResponse, error)
	FinishQuiz(ctx context.Context, userID, sessionID string) (*dto.QuizResultResponse, error)
	ListAttempts(ctx context.Context, userID, setID string, page dto.Pagination) (*dto.QuizAttemptsResponse, error)
}

type quizService struct {
	flashcards FlashcardService
	sessions   QuizSessionStore
	attempts   domain.QuizAttemptRepository
	opts       domain.QuizOptions
	now        func() time.Time
}

func NewQuizService(flashcards FlashcardService, sessions QuizSessionStore, attempts domain.QuizAttemptRepository, quizCfg config.QuizConfig) QuizService {
	return &quizService{
		flashcards: flashcards,
		sessions:   sessions,
		attempts:   attempts,
		opts: domain.QuizOptions{
			MaxQuestions:  quizCfg.MaxQuestions,
			MinFlashcards: quizCfg.MinFlashcards,
			Policy:        domain.DistractorPolicy(quizCfg.DistractorPolicy),
		},
		now: time.Now,
	}
}

func (s *quizService) StartQuiz(ctx context.Context, userID, setID string) (*dto.QuizSessionResponse, error) {
	cards, err := s.flashcards.GetFlashcards(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	questions, err := domain.GenerateQuiz(cards, domain.NewQuizRand(), s.opts)
	if err != nil {
		return nil, err
	}

	session := domain.NewQuizSession(util.NewULID(), userID, setID, questions, s.now())
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	logger.Get().Info("Started quiz",
		zap.String("userID", userID),
		zap.String("setID", setID),
		zap.String("sessionID", session.ID),
		zap.Int("questions", len(questions)))
	return s.toSessionResponse(session), nil
}

// RestartQuiz reshuffles a new session from the same set. The old session is
// dropped only once the new one exists.
func (s *quizService) RestartQuiz(ctx context.Context, userID, sessionID string) (*dto.QuizSessionResponse, error) {
	session, err := s.loadSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	resp, err := s.StartQuiz(ctx, userID, session.SetID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		logger.Get().Warn("Failed to delete restarted quiz session", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return resp, nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, userID, sessionID string, questionIndex, selectedIndex int) (*dto.SubmitAnswerResponse, error) {
	var correct bool
	session, err := s.sessions.Update(ctx, sessionID, func(session *domain.QuizSession) error {
		if session.UserID != userID {
			return domain.NewSessionNotFoundError(sessionID)
		}
		var err error
		correct, err = session.Answer(questionIndex, selectedIndex)
		return err
	})
	if err != nil {
		return nil, sessionError(err, sessionID)
	}

	return &dto.SubmitAnswerResponse{
		Correct:            correct,
		CorrectAnswerIndex: session.Questions[questionIndex].CorrectAnswerIndex,
		CorrectSoFar:       session.Correct,
		Answered:           session.Answered(),
		TotalQuestions:     len(session.Questions),
	}, nil
}

// FinishQuiz scores the session, records the attempt and ends the session.
// Unanswered questions count as wrong. The session is claimed before the attempt
// is saved, so concurrent calls record it once; it is restored if saving fails.
func (s *quizService) FinishQuiz(ctx context.Context, userID, sessionID string) (*dto.QuizResultResponse, error) {
	if _, err := s.loadSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	session, err := s.sessions.Take(ctx, sessionID)
	if err != nil {
		return nil, sessionError(err, sessionID)
	}
	result := session.Result()

	attempt := &domain.QuizAttempt{
		ID:             util.NewULID(),
		UserID:         userID,
		SetID:          session.SetID,
		TotalQuestions: result.Total,
		CorrectAnswers: result.Correct,
		Percentage:     result.Percentage,
		CompletedAt:    s.now(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		if putErr := s.sessions.Put(ctx, session); putErr != nil {
			logger.Get().Error("Failed to restore quiz session after save failure", zap.String("sessionID", sessionID), zap.Error(putErr))
		}
		return nil, domain.NewInternalError("Failed to save quiz attempt", err)
	}

	logger.Get().Info("Finished quiz",
		zap.String("userID", userID),
		zap.String("setID", session.SetID),
		zap.Int("correct", result.Correct),
		zap.Int("total", result.Total))
	return &dto.QuizResultResponse{
		AttemptID:  attempt.ID,
		SetID:      session.SetID,
		Correct:    result.Correct,
		Total:      result.Total,
		Percentage: result.Percentage,
		Message:    result.Message,
	}, nil
}

func (s *quizService) ListAttempts(ctx context.Context, userID, setID string, page dto.Pagination) (*dto.QuizAttemptsResponse, error) {
	if err := s.flashcards.CheckSetAccess(ctx, userID, setID); err != nil {
		return nil, err
	}
	page = page.Normalize()
	attempts, total, err := s.attempts.ListAttempts(ctx, userID, setID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quiz attempts", err)
	}

	resp := &dto.QuizAttemptsResponse{
		Attempts:       make([]dto.QuizAttemptItem, 0, len(attempts)),
		PaginationInfo: dto.NewPaginationInfo(page, total),
	}
	for _, a := range attempts {
		resp.Attempts = append(resp.Attempts, dto.QuizAttemptItem{
			AttemptID:      a.ID,
			SetID:          a.SetID,
			TotalQuestions: a.TotalQuestions,
			CorrectAnswers: a.CorrectAnswers,
			Percentage:     a.Percentage,
			CompletedAt:    a.CompletedAt,
		})
	}
	return resp, nil
}

// loadSession treats another user's session the same as a missing one.
func (s *quizService) loadSession(ctx context.Context, userID, sessionID string) (*domain.QuizSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionError(err, sessionID)
	}
	if session.UserID != userID {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	return session, nil
}

func sessionError(err error, sessionID string) error {
	if errors.Is(err, ErrQuizSessionNotFound) {
		return domain.NewSessionNotFoundError(sessionID)
	}
	return err
}

func (s *quizService) toSessionResponse(session *domain.QuizSession) *dto.QuizSessionResponse {
	questions := make([]dto.QuizQuestionResponse, 0, len(session.Questions))
	for i, q := range session.Questions {
		questions = append(questions, dto.QuizQuestionResponse{
			Index:    i,
			Question: q.Question,
			Options:  q.Options,
		})
	}
	return &dto.QuizSessionResponse{
		SessionID:      session.ID,
		SetID:          session.SetID,
		TotalQuestions: len(session.Questions),
		Questions:      questions,
		ExpiresAt:      session.StartedAt.Add(s.sessions.TTL()),
	}
}
