package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error {
	return errors.New("connection reset")
}

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection reset")
}

func (brokenCache) DeleteByPattern(context.Context, string) error {
	return errors.New("connection reset")
}

func TestLoadThroughCachesComputedValue(t *testing.T) {
	cache := newTestCache(newMemoryCache())
	calls := 0
	load := func() (*models.StudentGrades, error) {
		calls++
		return &models.StudentGrades{StudentID: "kid-1"}, nil
	}

	first, hit, err := loadThrough(context.Background(), cache, "grades:kid-1", load)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := loadThrough(context.Background(), cache, "grades:kid-1", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLoadThroughIgnoresCacheFailures(t *testing.T) {
	cache := newTestCache(brokenCache{})

	value, hit, err := loadThrough(context.Background(), cache, "grades:kid-1", func() (*models.StudentGrades, error) {
		return &models.StudentGrades{StudentID: "kid-1"}, nil
	})

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "kid-1", value.StudentID)
}

func TestLoadThroughPropagatesLoadError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := loadThrough(context.Background(), newTestCache(newMemoryCache()), "grades:kid-1", func() (*models.StudentGrades, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCache()
	svc := NewCacheService(repo, nil, 0, nil, false)

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(context.Background(), "k", &models.StudentGrades{}, 0))
	assert.Empty(t, repo.values)
	require.NoError(t, svc.Invalidate(context.Background(), "k*"))
	assert.Empty(t, repo.deleted)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}
