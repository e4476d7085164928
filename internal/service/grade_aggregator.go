package service

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// subjectPalette is the fixed ARGB palette subjects are hashed into.
var subjectPalette = [...]uint32{
	0xFFE53935, // red
	0xFF8E24AA, // purple
	0xFF3949AB, // indigo
	0xFF1E88E5, // blue
	0xFF00ACC1, // cyan
	0xFF00897B, // teal
	0xFF43A047, // green
	0xFFC0CA33, // lime
	0xFFFDD835, // yellow
	0xFFFB8C00, // orange
	0xFF6D4C41, // brown
	0xFF546E7A, // blue grey
}

// SubjectColor maps a subject ID onto the palette. The mapping is a pure function of the ID.
func SubjectColor(subjectID string) uint32 {
	return subjectPalette[xxhash.Sum64String(subjectID)%uint64(len(subjectPalette))]
}

// WeightedAverage returns sum(score*weight)/sum(weight) over grades with a positive weight,
// or 0 when there is nothing to average.
func WeightedAverage(grades []models.Grade) float64 {
	var weighted, total float64
	for _, g := range grades {
		if g.Weight <= 0 {
			continue
		}
		weighted += g.Score * g.Weight
		total += g.Weight
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// AggregateGrades builds the per-subject stats for a subject's grades.
func AggregateGrades(grades []models.Grade, subjectName, subjectID string) models.SubjectGradeStats {
	owned := make([]models.Grade, len(grades))
	copy(owned, grades)
	return models.SubjectGradeStats{
		SubjectID:    subjectID,
		SubjectName:  subjectName,
		SubjectColor: SubjectColor(subjectID),
		Average:      WeightedAverage(owned),
		Grades:       owned,
	}
}

// GroupGradesBySubject aggregates every subject present in grades, ordered by subject name.
// Grades keep their input order inside each subject.
func GroupGradesBySubject(grades []models.Grade) []models.SubjectGradeStats {
	type bucket struct {
		name   string
		grades []models.Grade
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0)
	for _, g := range grades {
		b, ok := buckets[g.SubjectID]
		if !ok {
			b = &bucket{name: g.SubjectName}
			buckets[g.SubjectID] = b
			order = append(order, g.SubjectID)
		}
		b.grades = append(b.grades, g)
	}

	stats := make([]models.SubjectGradeStats, 0, len(order))
	for _, id := range order {
		b := buckets[id]
		stats = append(stats, AggregateGrades(b.grades, b.name, id))
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].SubjectName < stats[j].SubjectName
	})
	return stats
}

// OverallAverage is the plain mean of the subject averages that have at least one grade.
func OverallAverage(subjects []models.SubjectGradeStats) float64 {
	var sum float64
	var n int
	for _, s := range subjects {
		if len(s.Grades) == 0 {
			continue
		}
		sum += s.Average
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
