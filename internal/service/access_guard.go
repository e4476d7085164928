package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type studentDirectory interface {
	ListChildren(ctx context.Context, parentID string) ([]models.Child, error)
	TeacherHasStudent(ctx context.Context, teacherID, studentID string) (bool, error)
	StudentInSchool(ctx context.Context, studentID, schoolID string) (bool, error)
}

type childSet struct {
	children []models.Child
	ids      map[string]struct{}
}

// childrenCache holds complete per-parent child sets. A refresh bumps the
// generation so a fetch that started earlier cannot repopulate the entry.
type childrenCache struct {
	mu          sync.RWMutex
	entries     map[string]childSet
	generations map[string]uint64
	epoch       uint64
}

func newChildrenCache() *childrenCache {
	return &childrenCache{entries: make(map[string]childSet), generations: make(map[string]uint64)}
}

func (c *childrenCache) get(parentID string) (childSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.entries[parentID]
	return set, ok
}

func (c *childrenCache) generation(parentID string) (uint64, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch, c.generations[parentID]
}

func (c *childrenCache) store(parentID string, epoch, gen uint64, children []models.Child) {
	ids := make(map[string]struct{}, len(children))
	for _, child := range children {
		ids[child.ID] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.generations[parentID] != gen {
		return
	}
	c.entries[parentID] = childSet{children: children, ids: ids}
}

func (c *childrenCache) drop(parentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, parentID)
	c.generations[parentID]++
}

func (c *childrenCache) dropAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]childSet)
	c.epoch++
}

// AccessGuard decides whether a caller may read or write a student's data.
type AccessGuard struct {
	directory studentDirectory
	cache     *childrenCache
	inflight  singleflight.Group
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAccessGuard constructs an AccessGuard with an empty children cache.
func NewAccessGuard(directory studentDirectory, metrics *MetricsService, logger *zap.Logger) *AccessGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGuard{directory: directory, cache: newChildrenCache(), metrics: metrics, logger: logger}
}

// Children returns the parent's children, loading and caching the full set on first use.
func (g *AccessGuard) Children(ctx context.Context, parentID string) ([]models.Child, error) {
	set, err := g.childSet(ctx, parentID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Child, len(set.children))
	copy(out, set.children)
	return out, nil
}

// VerifyChildAccess fails with ErrAccessDenied unless childID is one of the parent's children.
func (g *AccessGuard) VerifyChildAccess(ctx context.Context, parentID, childID string) error {
	if parentID == "" {
		return appErrors.ErrAuthenticationRequired
	}
	set, err := g.childSet(ctx, parentID)
	if err != nil {
		return err
	}
	if _, ok := set.ids[childID]; !ok {
		g.deny(models.RoleParent, parentID, childID)
		return appErrors.ErrAccessDenied
	}
	return nil
}

// VerifyStudentAccess applies the caller's role rule to a student-scoped request.
func (g *AccessGuard) VerifyStudentAccess(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	if claims == nil || claims.UserID == "" {
		return appErrors.ErrAuthenticationRequired
	}
	if studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}

	switch claims.Role {
	case models.RoleParent:
		return g.VerifyChildAccess(ctx, claims.UserID, studentID)
	case models.RoleStudent:
		if claims.UserID != studentID {
			g.deny(claims.Role, claims.UserID, studentID)
			return appErrors.ErrAccessDenied
		}
		return nil
	case models.RoleTeacher:
		ok, err := g.directory.TeacherHasStudent(ctx, claims.UserID, studentID)
		if err != nil {
			return appErrors.Backend(err, "failed to verify teacher access")
		}
		if !ok {
			g.deny(claims.Role, claims.UserID, studentID)
			return appErrors.ErrAccessDenied
		}
		return nil
	case models.RoleSuperAdmin:
		return nil
	case models.RoleAdmin, models.RoleBigAdmin:
		if claims.SchoolID == "" {
			g.deny(claims.Role, claims.UserID, studentID)
			return appErrors.ErrAccessDenied
		}
		ok, err := g.directory.StudentInSchool(ctx, studentID, claims.SchoolID)
		if err != nil {
			return appErrors.Backend(err, "failed to verify school access")
		}
		if !ok {
			g.deny(claims.Role, claims.UserID, studentID)
			return appErrors.ErrAccessDenied
		}
		return nil
	default:
		g.deny(claims.Role, claims.UserID, studentID)
		return appErrors.ErrAccessDenied
	}
}

// Refresh forgets the cached children of one parent.
func (g *AccessGuard) Refresh(parentID string) {
	g.cache.drop(parentID)
	g.inflight.Forget(parentID)
}

// RefreshAll forgets every cached child set.
func (g *AccessGuard) RefreshAll() {
	g.cache.dropAll()
}

func (g *AccessGuard) childSet(ctx context.Context, parentID string) (childSet, error) {
	if set, ok := g.cache.get(parentID); ok {
		return set, nil
	}

	epoch, gen := g.cache.generation(parentID)
	// The fetch is shared by every waiter, so it must outlive the caller that started it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := g.inflight.Do(parentID, func() (interface{}, error) {
		children, err := g.directory.ListChildren(shared, parentID)
		if err != nil {
			return nil, err
		}
		g.cache.store(parentID, epoch, gen, children)
		return children, nil
	})
	if err != nil {
		g.logger.Warn("load children failed", zap.String("parent_id", parentID), zap.Error(err))
		return childSet{}, appErrors.Backend(err, "failed to load children")
	}

	children := v.([]models.Child)
	ids := make(map[string]struct{}, len(children))
	for _, child := range children {
		ids[child.ID] = struct{}{}
	}
	return childSet{children: children, ids: ids}, nil
}

func (g *AccessGuard) deny(role models.Role, callerID, studentID string) {
	g.metrics.RecordAccessDenied(string(role))
	g.logger.Info("student access denied",
		zap.String("role", string(role)),
		zap.String("caller_id", callerID),
		zap.String("student_id", studentID),
	)
}
