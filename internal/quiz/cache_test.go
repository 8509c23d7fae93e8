package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	data   map[string]string
	getErr error
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	raw, ok := s.data[key]
	return raw, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, raw string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = raw
	return nil
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(GenerateRequest{Chunk: "cells", QuestionsCount: 2})

	assert.True(t, strings.HasPrefix(a, "lessonquiz:chunk:"))
	assert.True(t, strings.HasSuffix(a, ":2"))
	assert.Equal(t, a, CacheKey(GenerateRequest{Chunk: "cells", QuestionsCount: 2}))
	assert.NotEqual(t, a, CacheKey(GenerateRequest{Chunk: "cells", QuestionsCount: 3}))
	assert.NotEqual(t, a, CacheKey(GenerateRequest{Chunk: "atoms", QuestionsCount: 2}))
}

func TestCachedGenerator_ServesRepeatsFromStore(t *testing.T) {
	gen := &recordingGenerator{respond: echoQuiz}
	store := newMemoryStore()
	cached := NewCachedGenerator(gen, store, zerolog.Nop())
	req := GenerateRequest{Chunk: "mitosis splits cells", QuestionsCount: 2}

	first, err := cached.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := cached.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls())
	assert.Contains(t, store.data, CacheKey(req))
}

func TestCachedGenerator_DoesNotStoreUnusableResponses(t *testing.T) {
	gen := &recordingGenerator{respond: func(GenerateRequest) (string, error) { return "sorry", nil }}
	store := newMemoryStore()
	cached := NewCachedGenerator(gen, store, zerolog.Nop())
	req := GenerateRequest{Chunk: "mitosis", QuestionsCount: 1}

	for i := 0; i < 2; i++ {
		raw, err := cached.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "sorry", raw)
	}

	assert.Equal(t, 2, gen.calls())
	assert.Empty(t, store.data)
}

func TestCachedGenerator_PropagatesGeneratorErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := &recordingGenerator{respond: func(GenerateRequest) (string, error) { return "", boom }}
	cached := NewCachedGenerator(gen, newMemoryStore(), zerolog.Nop())

	_, err := cached.Generate(context.Background(), GenerateRequest{Chunk: "x", QuestionsCount: 1})

	assert.ErrorIs(t, err, boom)
}

func TestCachedGenerator_StoreFailuresFallThrough(t *testing.T) {
	gen := &recordingGenerator{respond: echoQuiz}
	store := newMemoryStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	cached := NewCachedGenerator(gen, store, zerolog.Nop())

	raw, err := cached.Generate(context.Background(), GenerateRequest{Chunk: "photons travel", QuestionsCount: 1})

	require.NoError(t, err)
	_, err = ParseResponse(raw)
	assert.NoError(t, err)
	assert.Equal(t, 1, gen.calls())
}
