// ABOUTME: Pure search filter over student snapshots
// ABOUTME: Case-insensitive substring match on name, email, and student id

package roster

import (
	"strings"

	"github.com/rosterhq/roster/internal/store"
)

// FilterStudents returns the subsequence of students whose name, email, or
// student id contains term, compared case-insensitively. An empty term
// returns the input unchanged. The input is never mutated; order is
// preserved.
func FilterStudents(students []*store.Student, term string) []*store.Student {
	if term == "" {
		return students
	}

	needle := strings.ToLower(term)
	filtered := make([]*store.Student, 0, len(students))
	for _, s := range students {
		if strings.Contains(strings.ToLower(s.Name), needle) ||
			strings.Contains(strings.ToLower(s.Email), needle) ||
			strings.Contains(strings.ToLower(s.StudentID), needle) {
			filtered = append(filtered, s)
		}
	}

	return filtered
}
