package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Cache key families. A key is "<family>:<subject>" or "<family>:<subject>:<qualifier>".
const (
	FamilyAttendanceRecords = "attendance-records"
	FamilyAttendanceMonth   = "attendance-month"
	FamilyAttendanceRange   = "attendance-range"
	FamilyGrades            = "grades"
	FamilyEnrollment        = "enrollment"
	FamilySchedule          = "schedule"
	FamilyAssignments       = "assignments"
)

type patternInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CacheKey builds a key inside a family.
func CacheKey(family, subject string, qualifiers ...string) string {
	key := family + ":" + subject
	for _, q := range qualifiers {
		key += ":" + q
	}
	return key
}

// InvalidationGraph records which cached families derive from which sources and
// drops every dependent family when a source changes.
type InvalidationGraph struct {
	mu         sync.RWMutex
	dependents map[string][]string
	cache      patternInvalidator
	logger     *zap.Logger
}

// NewInvalidationGraph constructs an empty graph.
func NewInvalidationGraph(cache patternInvalidator, logger *zap.Logger) *InvalidationGraph {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationGraph{dependents: make(map[string][]string), cache: cache, logger: logger}
}

// DefaultInvalidationGraph wires the portal's read models to their sources.
func DefaultInvalidationGraph(cache patternInvalidator, logger *zap.Logger) *InvalidationGraph {
	g := NewInvalidationGraph(cache, logger)
	g.DependsOn(FamilyAttendanceMonth, FamilyAttendanceRecords)
	g.DependsOn(FamilyAttendanceRange, FamilyAttendanceRecords)
	g.DependsOn(FamilySchedule, FamilyEnrollment)
	g.DependsOn(FamilyAssignments, FamilyEnrollment)
	return g
}

// DependsOn declares that dependent is derived from source.
func (g *InvalidationGraph) DependsOn(dependent, source string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.dependents[source] {
		if existing == dependent {
			return
		}
	}
	g.dependents[source] = append(g.dependents[source], dependent)
}

// Affected returns family and everything transitively derived from it, sorted.
func (g *InvalidationGraph) Affected(family string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := map[string]struct{}{family: {}}
	queue := []string{family}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.dependents[current] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Invalidate drops the subject's keys in family and in every dependent family.
// All families are attempted; failures are joined.
func (g *InvalidationGraph) Invalidate(ctx context.Context, family, subject string) error {
	if g == nil || g.cache == nil {
		return nil
	}
	var errs []error
	for _, f := range g.Affected(family) {
		exact := CacheKey(f, subject)
		for _, pattern := range []string{exact, exact + ":*"} {
			if err := g.cache.Invalidate(ctx, pattern); err != nil {
				errs = append(errs, fmt.Errorf("invalidate %s: %w", pattern, err))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		g.logger.Warn("cache invalidation incomplete", zap.String("family", family), zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}
