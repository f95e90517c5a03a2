package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewULID(t *testing.T) {
	a, b := NewULID(), NewULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.True(t, IsULID(a))
	assert.Less(t, a, b)
	assert.False(t, IsULID("not-a-ulid"))
}

func TestSQLHelpers(t *testing.T) {
	assert.False(t, StringToNullString("").Valid)
	assert.Equal(t, "x", StringToNullString("x").String)

	assert.False(t, TimeToNullTime(time.Time{}).Valid)
	assert.False(t, TimePtrToNullTime(nil).Valid)

	now := time.Now()
	nt := TimePtrToNullTime(&now)
	assert.True(t, nt.Valid)
	got := NullTimeToPtr(nt)
	if assert.NotNil(t, got) {
		assert.True(t, now.Equal(*got))
	}
	assert.Nil(t, NullTimeToPtr(TimeToNullTime(time.Time{})))
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)

	sim, err = CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	assert.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-9)

	sim, err = CosineSimilarity([]float32{0, 0}, []float32{1, 1})
	assert.NoError(t, err)
	assert.Zero(t, sim)

	_, err = CosineSimilarity(nil, []float32{1})
	assert.Error(t, err)
	_, err = CosineSimilarity([]float32{1, 2}, []float32{1})
	assert.Error(t, err)
}
