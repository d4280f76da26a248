// ABOUTME: Record service coordinating validation, store mutations, and snapshot fan-out
// ABOUTME: Every successful mutation re-reads the partition and publishes the fresh snapshot

package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rosterhq/roster/internal/store"
)

// Service is the write path and subscription source for student records.
//
// Mutations are fire-and-forget from the client's perspective: Create
// returns only the assigned id, Update and Delete return nothing of the
// record. The visible effect of any mutation arrives through the snapshot
// stream, which always carries the store's latest consistent view — never
// an optimistic local patch.
type Service struct {
	store       store.Store
	broadcaster *SnapshotBroadcaster
	logger      *slog.Logger
}

// NewService creates a record service over the given store and broadcaster.
func NewService(st store.Store, b *SnapshotBroadcaster) *Service {
	return &Service{
		store:       st,
		broadcaster: b,
		logger:      slog.Default().With("component", "roster"),
	}
}

// List returns the owner's current snapshot, optionally filtered by a
// search term.
func (s *Service) List(ctx context.Context, ownerID, term string) ([]*store.Student, error) {
	students, err := s.store.ListStudents(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return FilterStudents(students, term), nil
}

// Create validates and inserts a new record into the owner's partition,
// returning the store-assigned id. Validation failure aborts before the
// store is touched.
func (s *Service) Create(ctx context.Context, ownerID string, student *store.Student) (string, error) {
	if err := ValidateStudent(student); err != nil {
		return "", err
	}

	student.OwnerID = ownerID
	if err := s.store.CreateStudent(ctx, student); err != nil {
		return "", fmt.Errorf("creating student: %w", err)
	}

	s.logger.Info("student created", "id", student.ID, "owner_id", ownerID)
	s.publishSnapshot(ctx, ownerID)
	return student.ID, nil
}

// Update validates and replaces an existing record by id. There is no
// partial merge: the caller supplies the full field set.
func (s *Service) Update(ctx context.Context, ownerID, id string, student *store.Student) error {
	if err := ValidateStudent(student); err != nil {
		return err
	}

	student.ID = id
	student.OwnerID = ownerID
	if err := s.store.UpdateStudent(ctx, student); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("updating student: %w", err)
	}

	s.logger.Info("student updated", "id", id, "owner_id", ownerID)
	s.publishSnapshot(ctx, ownerID)
	return nil
}

// Delete removes a record by id from the owner's partition.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteStudent(ctx, ownerID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting student: %w", err)
	}

	s.logger.Info("student deleted", "id", id, "owner_id", ownerID)
	s.publishSnapshot(ctx, ownerID)
	return nil
}

// Subscribe opens a snapshot stream for the owner's partition. It returns
// the current snapshot so the subscriber starts from known state, plus the
// channel delivering every subsequent snapshot. The subscription ends when
// ctx is cancelled.
func (s *Service) Subscribe(ctx context.Context, ownerID string) ([]*store.Student, <-chan []*store.Student, error) {
	// Register before the initial read so a mutation racing with Subscribe
	// is reflected either in the initial snapshot or in a queued event.
	ch, subID := s.broadcaster.Subscribe(ctx, ownerID)

	initial, err := s.store.ListStudents(ctx, ownerID)
	if err != nil {
		s.broadcaster.Unsubscribe(ownerID, subID)
		return nil, nil, fmt.Errorf("reading initial snapshot: %w", err)
	}

	return initial, ch, nil
}

// publishSnapshot re-reads the partition and fans it out. The mutation has
// already succeeded at this point, so a read failure only costs this one
// notification — the next mutation publishes the complete state anyway.
func (s *Service) publishSnapshot(ctx context.Context, ownerID string) {
	snapshot, err := s.store.ListStudents(ctx, ownerID)
	if err != nil {
		s.logger.Warn("failed to read snapshot for broadcast", "owner_id", ownerID, "error", err)
		return
	}
	s.broadcaster.Publish(ownerID, snapshot)
}
