// ABOUTME: Store interface and data types for roster persistence
// ABOUTME: Defines Student, Owner structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Student represents a single student record. Records are partitioned by
// the owning anonymous identity: a record is visible to and mutable by
// exactly one owner.
type Student struct {
	ID        string `json:"id"`
	OwnerID   string `json:"-"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"studentId"`
	Phone     string `json:"phone,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Owner represents an anonymous identity that owns a partition of the
// student collection. Owners are created lazily the first time a browser
// session resolves an identity.
type Owner struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store defines the interface for student and owner persistence.
// List results are ordered by creation time (then id for ties) so every
// snapshot of a partition has a stable order.
type Store interface {
	// Students
	// CreateStudent assigns the record's ID and timestamps, then persists it.
	CreateStudent(ctx context.Context, student *Student) error
	GetStudent(ctx context.Context, ownerID, id string) (*Student, error)
	ListStudents(ctx context.Context, ownerID string) ([]*Student, error)
	// UpdateStudent replaces all caller-supplied fields of an existing record.
	UpdateStudent(ctx context.Context, student *Student) error
	DeleteStudent(ctx context.Context, ownerID, id string) error
	CountStudents(ctx context.Context, ownerID string) (int, error)

	// Owners
	// TouchOwner creates the owner row if needed and bumps last_seen.
	TouchOwner(ctx context.Context, ownerID string) error
	ListOwners(ctx context.Context) ([]*Owner, error)

	// Close releases any resources held by the store
	Close() error
}
