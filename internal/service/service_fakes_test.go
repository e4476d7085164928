package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// stubGuard allows only the listed callers for each student.
type stubGuard struct {
	allowed map[string][]string
	err     error
}

func (g *stubGuard) VerifyStudentAccess(_ context.Context, claims *models.JWTClaims, studentID string) error {
	if g.err != nil {
		return g.err
	}
	if claims == nil {
		return appErrors.ErrAuthenticationRequired
	}
	for _, id := range g.allowed[studentID] {
		if id == claims.UserID {
			return nil
		}
	}
	return appErrors.ErrAccessDenied
}

func (g *stubGuard) VerifyChildAccess(ctx context.Context, parentID, childID string) error {
	return g.VerifyStudentAccess(ctx, &models.JWTClaims{UserID: parentID, Role: models.RoleParent}, childID)
}

// memoryCache is an in-process CacheRepository used to exercise CacheService paths.
type memoryCache struct {
	mu      sync.Mutex
	values  map[string]interface{}
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]interface{})}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case **models.StudentGrades:
		*d = v.(*models.StudentGrades)
	case **models.AttendanceMonth:
		*d = v.(*models.AttendanceMonth)
	case **models.WeekSchedule:
		*d = v.(*models.WeekSchedule)
	default:
		return appErrors.ErrCacheMiss
	}
	return nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.values {
		if key == pattern || (strings.HasSuffix(pattern, "*") && strings.HasPrefix(key, prefix)) {
			delete(m.values, key)
		}
	}
	return nil
}

func newTestCache(repo CacheRepository) *CacheService {
	return NewCacheService(repo, nil, time.Minute, nil, true)
}
