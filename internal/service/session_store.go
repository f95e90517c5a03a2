package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"study-deck/internal/cache"
	"study-deck/internal/domain"
	"study-deck/internal/logger"

	"go.uber.org/zap"
)

// ErrQuizSessionNotFound is returned when a session is missing or has expired.
var ErrQuizSessionNotFound = errors.New("quiz session not found in cache")

// maxSessionUpdateAttempts bounds the optimistic retry loop in Update.
const maxSessionUpdateAttempts = 16

// QuizSessionStore keeps in-progress quiz sessions in the shared cache.
type QuizSessionStore interface {
	Put(ctx context.Context, session *domain.QuizSession) error
	Get(ctx context.Context, sessionID string) (*domain.QuizSession, error)
	// Update applies fn to the current session and stores the result only if the
	// stored value did not change meanwhile. fn may run more than once.
	Update(ctx context.Context, sessionID string, fn func(*domain.QuizSession) error) (*domain.QuizSession, error)
	// Take removes the session and returns it; concurrent callers get it at most once.
	Take(ctx context.Context, sessionID string) (*domain.QuizSession, error)
	Delete(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

type quizSessionStoreImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewQuizSessionStore(c domain.Cache, ttl time.Duration) QuizSessionStore {
	return &quizSessionStoreImpl{cache: c, ttl: ttl}
}

func (s *quizSessionStoreImpl) TTL() time.Duration { return s.ttl }

// Put writes the whole session and restarts its TTL.
func (s *quizSessionStoreImpl) Put(ctx context.Context, session *domain.QuizSession) error {
	if session == nil {
		return domain.NewInvalidInputError("cannot store nil quiz session")
	}
	key := cache.QuizSessionKey(session.ID)
	data, err := json.Marshal(session)
	if err != nil {
		return domain.NewInternalError("failed to marshal quiz session", err)
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		logger.Get().Error("Failed to store quiz session", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to store quiz session %s", session.ID), err)
	}
	return nil
}

func (s *quizSessionStoreImpl) Get(ctx context.Context, sessionID string) (*domain.QuizSession, error) {
	_, session, err := s.read(ctx, sessionID)
	return session, err
}

func (s *quizSessionStoreImpl) Update(ctx context.Context, sessionID string, fn func(*domain.QuizSession) error) (*domain.QuizSession, error) {
	key := cache.QuizSessionKey(sessionID)
	for attempt := 0; attempt < maxSessionUpdateAttempts; attempt++ {
		raw, session, err := s.read(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if err := fn(session); err != nil {
			return nil, err
		}
		data, err := json.Marshal(session)
		if err != nil {
			return nil, domain.NewInternalError("failed to marshal quiz session", err)
		}

		swapped, err := s.cache.CompareAndSwap(ctx, key, raw, string(data), s.ttl)
		if err != nil {
			if errors.Is(err, domain.ErrCacheMiss) {
				return nil, ErrQuizSessionNotFound
			}
			logger.Get().Error("Failed to update quiz session", zap.Error(err), zap.String("key", key))
			return nil, domain.NewInternalError(fmt.Sprintf("failed to update quiz session %s", sessionID), err)
		}
		if swapped {
			return session, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Get().Debug("Quiz session changed concurrently, retrying", zap.String("sessionID", sessionID), zap.Int("attempt", attempt+1))
	}
	return nil, domain.NewConflictError("Quiz session is busy, please retry").WithContext("session_id", sessionID)
}

func (s *quizSessionStoreImpl) Take(ctx context.Context, sessionID string) (*domain.QuizSession, error) {
	key := cache.QuizSessionKey(sessionID)
	data, err := s.cache.GetDel(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, ErrQuizSessionNotFound
		}
		logger.Get().Error("Failed to take quiz session", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to take quiz session %s", sessionID), err)
	}
	var session domain.QuizSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		logger.Get().Error("Discarding unreadable quiz session", zap.Error(err), zap.String("key", key))
		return nil, ErrQuizSessionNotFound
	}
	return &session, nil
}

// read returns the raw stored value alongside the decoded session.
func (s *quizSessionStoreImpl) read(ctx context.Context, sessionID string) (string, *domain.QuizSession, error) {
	key := cache.QuizSessionKey(sessionID)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return "", nil, ErrQuizSessionNotFound
		}
		logger.Get().Error("Failed to read quiz session", zap.Error(err), zap.String("key", key))
		return "", nil, domain.NewInternalError(fmt.Sprintf("failed to read quiz session %s", sessionID), err)
	}
	if data == "" {
		return "", nil, ErrQuizSessionNotFound
	}

	var session domain.QuizSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		logger.Get().Error("Discarding unreadable quiz session", zap.Error(err), zap.String("key", key))
		_ = s.cache.Delete(ctx, key)
		return "", nil, ErrQuizSessionNotFound
	}
	return data, &session, nil
}

func (s *quizSessionStoreImpl) Delete(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, cache.QuizSessionKey(sessionID)); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to delete quiz session %s", sessionID), err)
	}
	return nil
}

// getCachedJSON reads a best-effort cache entry. Any failure is reported as a miss.
func getCachedJSON(ctx context.Context, c domain.Cache, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Cache read failed", zap.Error(err), zap.String("key", key))
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		logger.Get().Warn("Cache entry unreadable", zap.Error(err), zap.String("key", key))
		return false
	}
	return true
}

func setCachedJSON(ctx context.Context, c domain.Cache, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		logger.Get().Warn("Cache entry not serializable", zap.Error(err), zap.String("key", key))
		return
	}
	if err := c.Set(ctx, key, string(data), ttl); err != nil {
		logger.Get().Warn("Cache write failed", zap.Error(err), zap.String("key", key))
	}
}

func invalidateCached(ctx context.Context, c domain.Cache, key string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, key); err != nil {
		logger.Get().Warn("Cache invalidation failed", zap.Error(err), zap.String("key", key))
	}
}
