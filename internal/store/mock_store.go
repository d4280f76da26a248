// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	students map[string]*Student // keyed by student ID
	owners   map[string]*Owner   // keyed by owner ID

	// CreateCalls counts CreateStudent invocations; tests use it to assert
	// that rejected input never reaches the store.
	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	// FailWith, when set, is returned by every student mutation.
	FailWith error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		students: make(map[string]*Student),
		owners:   make(map[string]*Owner),
	}
}

// CreateStudent assigns an id and timestamps, then stores a copy.
func (m *MockStore) CreateStudent(ctx context.Context, student *Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.FailWith != nil {
		return m.FailWith
	}

	now := time.Now().UTC()
	student.ID = uuid.NewString()
	student.CreatedAt = now
	student.UpdatedAt = now

	s := *student
	m.students[s.ID] = &s
	return nil
}

// GetStudent retrieves a student by owner and id.
func (m *MockStore) GetStudent(ctx context.Context, ownerID, id string) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok || s.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	result := *s
	return &result, nil
}

// ListStudents returns the owner's partition ordered by creation time.
func (m *MockStore) ListStudents(ctx context.Context, ownerID string) ([]*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]*Student, 0)
	for _, s := range m.students {
		if s.OwnerID != ownerID {
			continue
		}
		copied := *s
		students = append(students, &copied)
	}

	sort.Slice(students, func(i, j int) bool {
		if students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].ID < students[j].ID
		}
		return students[i].CreatedAt.Before(students[j].CreatedAt)
	})

	return students, nil
}

// UpdateStudent replaces the stored record's mutable fields.
func (m *MockStore) UpdateStudent(ctx context.Context, student *Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.FailWith != nil {
		return m.FailWith
	}

	existing, ok := m.students[student.ID]
	if !ok || existing.OwnerID != student.OwnerID {
		return ErrNotFound
	}

	existing.Name = student.Name
	existing.Email = student.Email
	existing.StudentID = student.StudentID
	existing.Phone = student.Phone
	existing.UpdatedAt = time.Now().UTC()
	student.UpdatedAt = existing.UpdatedAt
	return nil
}

// DeleteStudent removes a student from the owner's partition.
func (m *MockStore) DeleteStudent(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls++
	if m.FailWith != nil {
		return m.FailWith
	}

	s, ok := m.students[id]
	if !ok || s.OwnerID != ownerID {
		return ErrNotFound
	}

	delete(m.students, id)
	return nil
}

// CountStudents returns the number of students in the owner's partition.
func (m *MockStore) CountStudents(ctx context.Context, ownerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, s := range m.students {
		if s.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// TouchOwner creates or refreshes the owner entry.
func (m *MockStore) TouchOwner(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if o, ok := m.owners[ownerID]; ok {
		o.LastSeen = now
		return nil
	}

	m.owners[ownerID] = &Owner{ID: ownerID, CreatedAt: now, LastSeen: now}
	return nil
}

// ListOwners returns all owners, oldest first.
func (m *MockStore) ListOwners(ctx context.Context) ([]*Owner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owners := make([]*Owner, 0, len(m.owners))
	for _, o := range m.owners {
		copied := *o
		owners = append(owners, &copied)
	}

	sort.Slice(owners, func(i, j int) bool {
		if owners[i].CreatedAt.Equal(owners[j].CreatedAt) {
			return owners[i].ID < owners[j].ID
		}
		return owners[i].CreatedAt.Before(owners[j].CreatedAt)
	})

	return owners, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
