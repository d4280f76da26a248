// ABOUTME: Tests for the record service
// ABOUTME: Covers validation gating, mutation flow, and snapshot publication

package roster

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MockStore) {
	t.Helper()
	mock := store.NewMockStore()
	b := NewSnapshotBroadcaster(nil)
	t.Cleanup(b.Close)
	return NewService(mock, b), mock
}

func waitForSnapshot(t *testing.T, ch <-chan []*store.Student) []*store.Student {
	t.Helper()
	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestService_Create_AssignsIDAndPublishes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, ch, err := svc.Subscribe(t.Context(), "owner-1")
	require.NoError(t, err)

	id, err := svc.Create(ctx, "owner-1", &store.Student{
		Name:      "Ana Li",
		Email:     "ana@x.com",
		StudentID: "S100",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snapshot := waitForSnapshot(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, id, snapshot[0].ID)
	assert.Equal(t, "Ana Li", snapshot[0].Name)
}

func TestService_Create_ValidationNeverReachesStore(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		student *store.Student
		wantMsg string
	}{
		{
			name:    "missing name",
			student: &store.Student{Name: "", Email: "a@b.com", StudentID: "S1"},
			wantMsg: "Name, Email, and Student ID are required.",
		},
		{
			name:    "bad email",
			student: &store.Student{Name: "Bo", Email: "not-an-email", StudentID: "S2"},
			wantMsg: "Please enter a valid email address.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner-1", tt.student)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}

	assert.Equal(t, 0, mock.CreateCalls, "invalid input must never reach the store")
}

func TestService_Update_ValidationNeverReachesStore(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"})
	require.NoError(t, err)
	require.Equal(t, 1, mock.CreateCalls)

	err = svc.Update(ctx, "owner-1", id, &store.Student{Name: "", Email: "ana@x.com", StudentID: "S100"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, 0, mock.UpdateCalls)
}

func TestService_Update_ReplacesAndPublishes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"})
	require.NoError(t, err)

	_, ch, err := svc.Subscribe(t.Context(), "owner-1")
	require.NoError(t, err)

	err = svc.Update(ctx, "owner-1", id, &store.Student{Name: "Ana Lively", Email: "ana@x.com", StudentID: "S100", Phone: "555-0101"})
	require.NoError(t, err)

	snapshot := waitForSnapshot(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Ana Lively", snapshot[0].Name)
	assert.Equal(t, "555-0101", snapshot[0].Phone)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Update(context.Background(), "owner-1", "nonexistent", &store.Student{
		Name: "Ghost", Email: "g@x.com", StudentID: "S0",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_Delete_RemovesExactlyThatID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	keepID, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Keep", Email: "k@x.com", StudentID: "S1"})
	require.NoError(t, err)
	removeID, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Remove", Email: "r@x.com", StudentID: "S2"})
	require.NoError(t, err)

	_, ch, err := svc.Subscribe(t.Context(), "owner-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "owner-1", removeID))

	snapshot := waitForSnapshot(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, keepID, snapshot[0].ID)
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), "owner-1", "nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// wrappingStore wraps the not-found sentinel the way a driver-level store
// might; the service must still recognize it.
type wrappingStore struct {
	store.Store
}

func (w *wrappingStore) UpdateStudent(ctx context.Context, student *store.Student) error {
	return fmt.Errorf("row lookup: %w", store.ErrNotFound)
}

func (w *wrappingStore) DeleteStudent(ctx context.Context, ownerID, id string) error {
	return fmt.Errorf("row lookup: %w", store.ErrNotFound)
}

func TestService_NotFoundSurvivesWrapping(t *testing.T) {
	b := NewSnapshotBroadcaster(nil)
	t.Cleanup(b.Close)
	svc := NewService(&wrappingStore{Store: store.NewMockStore()}, b)
	ctx := context.Background()

	err := svc.Update(ctx, "owner-1", "nonexistent", &store.Student{
		Name: "Ghost", Email: "g@x.com", StudentID: "S0",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.Delete(ctx, "owner-1", "nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_Subscribe_InitialSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"})
	require.NoError(t, err)

	initial, _, err := svc.Subscribe(t.Context(), "owner-1")
	require.NoError(t, err)
	require.Len(t, initial, 1)
	assert.Equal(t, "Ana Li", initial[0].Name)
}

func TestService_CreateAppearsExactlyOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, ch, err := svc.Subscribe(t.Context(), "owner-1")
	require.NoError(t, err)

	id, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"})
	require.NoError(t, err)

	snapshot := waitForSnapshot(t, ch)
	occurrences := 0
	for _, s := range snapshot {
		if s.ID == id {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences, "new record appears exactly once")
}

func TestService_MutationFailureSurfacesError(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	boom := errors.New("disk full")
	mock.FailWith = boom

	_, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsValidationError(err))
}

func TestService_List_AppliesFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", &store.Student{Name: "Ana Li", Email: "ana@x.com", StudentID: "S100"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", &store.Student{Name: "Bo Chen", Email: "bo@x.com", StudentID: "S200"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "owner-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(ctx, "owner-1", "ana")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Ana Li", filtered[0].Name)
}
