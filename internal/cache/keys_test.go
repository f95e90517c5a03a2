package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "profile",
			objectType:  "user",
			identifier:  "123",
			expectedKey: "studydeck:profile:user:123",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "profile",
			objectType:  "user",
			identifier:  "123",
			paramsKey:   []string{},
			expectedKey: "studydeck:profile:user:123",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "attempts",
			objectType:  "set",
			identifier:  "abc",
			paramsKey:   []string{"limit20", "offset40"},
			expectedKey: "studydeck:attempts:set:abc:limit20_offset40",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestNamedKeys(t *testing.T) {
	assert.Equal(t, "studydeck:quiz:session:s1", QuizSessionKey("s1"))
	assert.Equal(t, "studydeck:flashcards:set:set1", FlashcardsKey("set1"))
	assert.Equal(t, "studydeck:profile:user:u1", ProfileKey("u1"))
}
