// ABOUTME: Tests for the pure student search filter
// ABOUTME: Covers case-insensitivity, field coverage, empty terms, and no-match results

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster/internal/store"
)

func sampleStudents() []*store.Student {
	return []*store.Student{
		{ID: "1", Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"},
		{ID: "2", Name: "Bo Chen", Email: "bo.chen@example.org", StudentID: "S200"},
		{ID: "3", Name: "Carla Diaz", Email: "carla@uni.edu", StudentID: "X300"},
	}
}

func TestFilterStudents_EmptyTermReturnsAll(t *testing.T) {
	students := sampleStudents()
	filtered := FilterStudents(students, "")
	assert.Equal(t, students, filtered)
}

func TestFilterStudents_MatchesName(t *testing.T) {
	filtered := FilterStudents(sampleStudents(), "ana")
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)
}

func TestFilterStudents_CaseInsensitive(t *testing.T) {
	filtered := FilterStudents(sampleStudents(), "ANA")
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)

	filtered = FilterStudents(sampleStudents(), "s100")
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)
}

func TestFilterStudents_MatchesEmail(t *testing.T) {
	filtered := FilterStudents(sampleStudents(), "example.org")
	require.Len(t, filtered, 1)
	assert.Equal(t, "2", filtered[0].ID)
}

func TestFilterStudents_MatchesStudentID(t *testing.T) {
	filtered := FilterStudents(sampleStudents(), "X300")
	require.Len(t, filtered, 1)
	assert.Equal(t, "3", filtered[0].ID)
}

func TestFilterStudents_NoMatches(t *testing.T) {
	filtered := FilterStudents(sampleStudents(), "S999")
	assert.Empty(t, filtered)
	assert.NotNil(t, filtered)
}

func TestFilterStudents_PreservesOrder(t *testing.T) {
	// "c" appears in all three records (email, name, or both)
	filtered := FilterStudents(sampleStudents(), "c")
	require.Len(t, filtered, 3)
	assert.Equal(t, "1", filtered[0].ID)
	assert.Equal(t, "2", filtered[1].ID)
	assert.Equal(t, "3", filtered[2].ID)
}

func TestFilterStudents_DoesNotMutateInput(t *testing.T) {
	students := sampleStudents()
	FilterStudents(students, "ana")
	require.Len(t, students, 3)
}

func TestFilterStudents_SpecScenario(t *testing.T) {
	list := []*store.Student{
		{ID: "1", Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"},
	}

	filtered := FilterStudents(list, "ana")
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)

	filtered = FilterStudents(list, "S200")
	assert.Empty(t, filtered)
}
