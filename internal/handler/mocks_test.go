package handler_test

import (
	"context"
	"time"

	"study-deck/internal/domain"
	"study-deck/internal/dto"
)

// --- Manual Mocks ---

type MockFlashcardService struct {
	CreateSetFromUploadFunc func(ctx context.Context, userID string, upload domain.Upload) (*dto.FlashcardSetResponse, error)
	ListSetsFunc            func(ctx context.Context, userID string) (*dto.FlashcardSetListResponse, error)
	GetSetFunc              func(ctx context.Context, userID, setID string) (*dto.FlashcardSetResponse, error)
	RenameSetFunc           func(ctx context.Context, userID, setID, title string) (*dto.FlashcardSetResponse, error)
	DeleteSetFunc           func(ctx context.Context, userID, setID string) error
}

func (m *MockFlashcardService) CreateSetFromUpload(ctx context.Context, userID string, upload domain.Upload) (*dto.FlashcardSetResponse, error) {
	if m.CreateSetFromUploadFunc != nil {
		return m.CreateSetFromUploadFunc(ctx, userID, upload)
	}
	panic("MockFlashcardService.CreateSetFromUploadFunc not implemented")
}
func (m *MockFlashcardService) ListSets(ctx context.Context, userID string) (*dto.FlashcardSetListResponse, error) {
	if m.ListSetsFunc != nil {
		return m.ListSetsFunc(ctx, userID)
	}
	panic("MockFlashcardService.ListSetsFunc not implemented")
}
func (m *MockFlashcardService) GetSet(ctx context.Context, userID, setID string) (*dto.FlashcardSetResponse, error) {
	if m.GetSetFunc != nil {
		return m.GetSetFunc(ctx, userID, setID)
	}
	panic("MockFlashcardService.GetSetFunc not implemented")
}
func (m *MockFlashcardService) RenameSet(ctx context.Context, userID, setID, title string) (*dto.FlashcardSetResponse, error) {
	if m.RenameSetFunc != nil {
		return m.RenameSetFunc(ctx, userID, setID, title)
	}
	panic("MockFlashcardService.RenameSetFunc not implemented")
}
func (m *MockFlashcardService) DeleteSet(ctx context.Context, userID, setID string) error {
	if m.DeleteSetFunc != nil {
		return m.DeleteSetFunc(ctx, userID, setID)
	}
	panic("MockFlashcardService.DeleteSetFunc not implemented")
}
func (m *MockFlashcardService) CheckSetAccess(context.Context, string, string) error {
	panic("MockFlashcardService.CheckSetAccess not implemented")
}
func (m *MockFlashcardService) GetFlashcards(context.Context, string, string) ([]*domain.Flashcard, error) {
	panic("MockFlashcardService.GetFlashcards not implemented")
}

type MockQuizService struct {
	StartQuizFunc    func(ctx context.Context, userID, setID string) (*dto.QuizSessionResponse, error)
	RestartQuizFunc  func(ctx context.Context, userID, sessionID string) (*dto.QuizSessionResponse, error)
	SubmitAnswerFunc func(ctx context.Context, userID, sessionID string, questionIndex, selectedIndex int) (*dto.SubmitAnswerResponse, error)
	FinishQuizFunc   func(ctx context.Context, userID, sessionID string) (*dto.QuizResultResponse, error)
	ListAttemptsFunc func(ctx context.Context, userID, setID string, page dto.Pagination) (*dto.QuizAttemptsResponse, error)
}

func (m *MockQuizService) StartQuiz(ctx context.Context, userID, setID string) (*dto.QuizSessionResponse, error) {
	if m.StartQuizFunc != nil {
		return m.StartQuizFunc(ctx, userID, setID)
	}
	panic("MockQuizService.StartQuizFunc not implemented")
}
func (m *MockQuizService) RestartQuiz(ctx context.Context, userID, sessionID string) (*dto.QuizSessionResponse, error) {
	if m.RestartQuizFunc != nil {
		return m.RestartQuizFunc(ctx, userID, sessionID)
	}
	panic("MockQuizService.RestartQuizFunc not implemented")
}
func (m *MockQuizService) SubmitAnswer(ctx context.Context, userID, sessionID string, questionIndex, selectedIndex int) (*dto.SubmitAnswerResponse, error) {
	if m.SubmitAnswerFunc != nil {
		return m.SubmitAnswerFunc(ctx, userID, sessionID, questionIndex, selectedIndex)
	}
	panic("MockQuizService.SubmitAnswerFunc not implemented")
}
func (m *MockQuizService) FinishQuiz(ctx context.Context, userID, sessionID string) (*dto.QuizResultResponse, error) {
	if m.FinishQuizFunc != nil {
		return m.FinishQuizFunc(ctx, userID, sessionID)
	}
	panic("MockQuizService.FinishQuizFunc not implemented")
}
func (m *MockQuizService) ListAttempts(ctx context.Context, userID, setID string, page dto.Pagination) (*dto.QuizAttemptsResponse, error) {
	if m.ListAttemptsFunc != nil {
		return m.ListAttemptsFunc(ctx, userID, setID, page)
	}
	panic("MockQuizService.ListAttemptsFunc not implemented")
}

type MockSubscriptionService struct {
	SubmitPaymentProofFunc func(ctx context.Context, userID string, upload domain.Upload) (*dto.SubscriptionRequestResponse, error)
	GetMyStatusFunc        func(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	ListRequestsFunc       func(ctx context.Context, status string, page dto.Pagination) (*dto.SubscriptionRequestListResponse, error)
	ApproveFunc            func(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error)
	RejectFunc             func(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error)
}

func (m *MockSubscriptionService) SubmitPaymentProof(ctx context.Context, userID string, upload domain.Upload) (*dto.SubscriptionRequestResponse, error) {
	if m.SubmitPaymentProofFunc != nil {
		return m.SubmitPaymentProofFunc(ctx, userID, upload)
	}
	panic("MockSubscriptionService.SubmitPaymentProofFunc not implemented")
}
func (m *MockSubscriptionService) GetMyStatus(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	if m.GetMyStatusFunc != nil {
		return m.GetMyStatusFunc(ctx, userID)
	}
	panic("MockSubscriptionService.GetMyStatusFunc not implemented")
}
func (m *MockSubscriptionService) ListRequests(ctx context.Context, status string, page dto.Pagination) (*dto.SubscriptionRequestListResponse, error) {
	if m.ListRequestsFunc != nil {
		return m.ListRequestsFunc(ctx, status, page)
	}
	panic("MockSubscriptionService.ListRequestsFunc not implemented")
}
func (m *MockSubscriptionService) Approve(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, adminID, requestID, note)
	}
	panic("MockSubscriptionService.ApproveFunc not implemented")
}
func (m *MockSubscriptionService) Reject(ctx context.Context, adminID, requestID, note string) (*dto.SubscriptionRequestResponse, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, adminID, requestID, note)
	}
	panic("MockSubscriptionService.RejectFunc not implemented")
}

type MockProfileService struct {
	GetMeFunc func(ctx context.Context, userID string) (*dto.ProfileResponse, error)
}

func (m *MockProfileService) EnsureProfile(context.Context, domain.Identity) (*domain.Profile, error) {
	panic("MockProfileService.EnsureProfile not implemented")
}
func (m *MockProfileService) GetProfile(context.Context, string) (*domain.Profile, error) {
	panic("MockProfileService.GetProfile not implemented")
}
func (m *MockProfileService) GetMe(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx, userID)
	}
	panic("MockProfileService.GetMeFunc not implemented")
}
func (m *MockProfileService) IsAdmin(context.Context, string) (bool, error) {
	panic("MockProfileService.IsAdmin not implemented")
}
func (m *MockProfileService) PromoteAdmin(context.Context, string) (*domain.Profile, error) {
	panic("MockProfileService.PromoteAdmin not implemented")
}
func (m *MockProfileService) Invalidate(context.Context, string) {}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type stubCache struct{ pingErr error }

func (c stubCache) Get(context.Context, string) (string, error)              { return "", domain.ErrCacheMiss }
func (c stubCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (c stubCache) Delete(context.Context, string) error                     { return nil }
func (c stubCache) CompareAndSwap(context.Context, string, string, string, time.Duration) (bool, error) {
	return false, domain.ErrCacheMiss
}
func (c stubCache) GetDel(context.Context, string) (string, error) { return "", domain.ErrCacheMiss }
func (c stubCache) Ping(context.Context) error                     { return c.pingErr }
