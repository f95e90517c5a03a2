package service

import (
	"context"
	"sync"
	"time"

	"study-deck/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockProfileRepository ---
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) ConsumeUpload(ctx context.Context, id string, freeLimit int) (bool, error) {
	args := m.Called(ctx, id, freeLimit)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) SetPremium(ctx context.Context, id string, since time.Time) error {
	return m.Called(ctx, id, since).Error(0)
}

func (m *MockProfileRepository) SetRole(ctx context.Context, id string, role domain.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

// --- MockFlashcardSetRepository ---
type MockFlashcardSetRepository struct {
	mock.Mock
}

func (m *MockFlashcardSetRepository) CreateSet(ctx context.Context, set *domain.FlashcardSet) error {
	return m.Called(ctx, set).Error(0)
}

func (m *MockFlashcardSetRepository) InsertFlashcards(ctx context.Context, cards []*domain.Flashcard) error {
	return m.Called(ctx, cards).Error(0)
}

func (m *MockFlashcardSetRepository) GetSetByID(ctx context.Context, setID string) (*domain.FlashcardSet, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlashcardSet), args.Error(1)
}

func (m *MockFlashcardSetRepository) ListSetsByOwner(ctx context.Context, ownerID string) ([]*domain.FlashcardSet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FlashcardSet), args.Error(1)
}

func (m *MockFlashcardSetRepository) GetFlashcardsBySetID(ctx context.Context, setID string) ([]*domain.Flashcard, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardSetRepository) UpdateSetTitle(ctx context.Context, setID, title string) error {
	return m.Called(ctx, setID, title).Error(0)
}

func (m *MockFlashcardSetRepository) DeleteSet(ctx context.Context, setID string) error {
	return m.Called(ctx, setID).Error(0)
}

// --- MockDocumentRepository ---
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockDocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- MockQuizAttemptRepository ---
type MockQuizAttemptRepository struct {
	mock.Mock
}

func (m *MockQuizAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	return m.Called(ctx, attempt).Error(0)
}

func (m *MockQuizAttemptRepository) ListAttempts(ctx context.Context, userID, setID string, limit, offset int) ([]*domain.QuizAttempt, int, error) {
	args := m.Called(ctx, userID, setID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.QuizAttempt), args.Int(1), args.Error(2)
}

// --- MockSubscriptionRepository ---
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) CreateRequest(ctx context.Context, req *domain.SubscriptionRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockSubscriptionRepository) GetRequestByID(ctx context.Context, id string) (*domain.SubscriptionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubscriptionRequest), args.Error(1)
}

func (m *MockSubscriptionRepository) GetLatestRequestByUser(ctx context.Context, userID string) (*domain.SubscriptionRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubscriptionRequest), args.Error(1)
}

func (m *MockSubscriptionRepository) ListRequests(ctx context.Context, status domain.SubscriptionStatus, limit, offset int) ([]*domain.SubscriptionRequest, int, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.SubscriptionRequest), args.Int(1), args.Error(2)
}

func (m *MockSubscriptionRepository) ReviewRequest(ctx context.Context, id string, status domain.SubscriptionStatus, reviewerID, note string, reviewedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, reviewerID, note, reviewedAt)
	return args.Bool(0), args.Error(1)
}

// --- MockFileStore ---
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Upload(ctx context.Context, bucket, path, contentType string, data []byte) error {
	return m.Called(ctx, bucket, path, contentType, data).Error(0)
}

func (m *MockFileStore) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, path, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	return m.Called(ctx, bucket, paths).Error(0)
}

// --- MockFlashcardGenerator ---
type MockFlashcardGenerator struct {
	mock.Mock
}

func (m *MockFlashcardGenerator) GenerateFromText(ctx context.Context, text string, count int) ([]domain.CardDraft, error) {
	args := m.Called(ctx, text, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CardDraft), args.Error(1)
}

func (m *MockFlashcardGenerator) GenerateFromImage(ctx context.Context, mimeType string, data []byte, count int) ([]domain.CardDraft, error) {
	args := m.Called(ctx, mimeType, data, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CardDraft), args.Error(1)
}

// MockTransactionManager runs fn directly and reports what fn returned.
type MockTransactionManager struct {
	calls int
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// memoryCache is an in-process domain.Cache for tests.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = expiration
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	delete(c.ttls, key)
	return nil
}

func (c *memoryCache) CompareAndSwap(_ context.Context, key, old, value string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.data[key]
	if !ok {
		return false, domain.ErrCacheMiss
	}
	if current != old {
		return false, nil
	}
	c.data[key] = value
	c.ttls[key] = expiration
	return true, nil
}

func (c *memoryCache) GetDel(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	delete(c.data, key)
	delete(c.ttls, key)
	return v, nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// stubRegistry maps document kinds to extractors.
type stubRegistry map[domain.DocumentKind]domain.TextExtractor

func (r stubRegistry) For(kind domain.DocumentKind) domain.TextExtractor { return r[kind] }

type stubExtractor struct {
	text string
	err  error
}

func (e stubExtractor) ExtractText(context.Context, []byte) (string, error) { return e.text, e.err }
