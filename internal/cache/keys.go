package cache

import "strings"

const (
	GlobalKeyPrefix = "studydeck"
)

// GenerateCacheKey builds "studydeck:<service>:<object>:<id>[:<params joined by _>]".
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

func QuizSessionKey(sessionID string) string {
	return GenerateCacheKey("quiz", "session", sessionID)
}

func FlashcardsKey(setID string) string {
	return GenerateCacheKey("flashcards", "set", setID)
}

func ProfileKey(userID string) string {
	return GenerateCacheKey("profile", "user", userID)
}
