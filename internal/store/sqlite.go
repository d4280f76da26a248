// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides partitioned student persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
// All queries are scoped to the application id given at construction, so
// multiple deployments can safely share one database file.
type SQLiteStore struct {
	db     *sql.DB
	appID  string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path, appID string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		appID:  appID,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path, "app_id", appID)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// student_id intentionally carries no unique index: it is a display key,
// not an identifier.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS owners (
			app_id     TEXT NOT NULL,
			id         TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_seen  TEXT NOT NULL,
			PRIMARY KEY (app_id, id)
		);

		CREATE TABLE IF NOT EXISTS students (
			id         TEXT PRIMARY KEY,
			app_id     TEXT NOT NULL,
			owner_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			student_id TEXT NOT NULL,
			phone      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_students_partition
			ON students(app_id, owner_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// CreateStudent assigns an id and timestamps to the record and inserts it
// into the owner's partition.
func (s *SQLiteStore) CreateStudent(ctx context.Context, student *Student) error {
	now := time.Now().UTC()
	student.ID = uuid.NewString()
	student.CreatedAt = now
	student.UpdatedAt = now

	query := `
		INSERT INTO students (id, app_id, owner_id, name, email, student_id, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		student.ID,
		s.appID,
		student.OwnerID,
		student.Name,
		student.Email,
		student.StudentID,
		student.Phone,
		student.CreatedAt.Format(time.RFC3339Nano),
		student.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting student: %w", err)
	}

	s.logger.Debug("created student", "id", student.ID, "owner_id", student.OwnerID)
	return nil
}

// GetStudent retrieves a student by id within the owner's partition.
// Returns ErrNotFound if the record doesn't exist or belongs to a
// different owner.
func (s *SQLiteStore) GetStudent(ctx context.Context, ownerID, id string) (*Student, error) {
	query := `
		SELECT id, owner_id, name, email, student_id, phone, created_at, updated_at
		FROM students
		WHERE app_id = ? AND owner_id = ? AND id = ?
	`

	student, err := scanStudent(s.db.QueryRowContext(ctx, query, s.appID, ownerID, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying student: %w", err)
	}

	return student, nil
}

// ListStudents returns every student in the owner's partition, ordered by
// creation time (id breaks ties).
func (s *SQLiteStore) ListStudents(ctx context.Context, ownerID string) ([]*Student, error) {
	query := `
		SELECT id, owner_id, name, email, student_id, phone, created_at, updated_at
		FROM students
		WHERE app_id = ? AND owner_id = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, s.appID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying students: %w", err)
	}
	defer rows.Close()

	students := make([]*Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating students: %w", err)
	}

	return students, nil
}

// UpdateStudent replaces the mutable fields of an existing record.
// Returns ErrNotFound if the record doesn't exist in the owner's partition.
func (s *SQLiteStore) UpdateStudent(ctx context.Context, student *Student) error {
	student.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE students
		SET name = ?, email = ?, student_id = ?, phone = ?, updated_at = ?
		WHERE app_id = ? AND owner_id = ? AND id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		student.Name,
		student.Email,
		student.StudentID,
		student.Phone,
		student.UpdatedAt.Format(time.RFC3339Nano),
		s.appID,
		student.OwnerID,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("updating student: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated student", "id", student.ID, "owner_id", student.OwnerID)
	return nil
}

// DeleteStudent removes a student from the owner's partition.
// Returns ErrNotFound if the record doesn't exist.
func (s *SQLiteStore) DeleteStudent(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM students WHERE app_id = ? AND owner_id = ? AND id = ?`

	result, err := s.db.ExecContext(ctx, query, s.appID, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting student: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted student", "id", id, "owner_id", ownerID)
	return nil
}

// CountStudents returns the number of students in the owner's partition.
func (s *SQLiteStore) CountStudents(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT COUNT(*) FROM students WHERE app_id = ? AND owner_id = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, s.appID, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting students: %w", err)
	}

	return count, nil
}

// TouchOwner creates the owner row if needed and bumps last_seen.
func (s *SQLiteStore) TouchOwner(ctx context.Context, ownerID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	query := `
		INSERT INTO owners (app_id, id, created_at, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (app_id, id) DO UPDATE SET last_seen = excluded.last_seen
	`

	if _, err := s.db.ExecContext(ctx, query, s.appID, ownerID, now, now); err != nil {
		return fmt.Errorf("touching owner: %w", err)
	}

	return nil
}

// ListOwners returns every owner known to this application, oldest first.
func (s *SQLiteStore) ListOwners(ctx context.Context) ([]*Owner, error) {
	query := `
		SELECT id, created_at, last_seen
		FROM owners
		WHERE app_id = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, s.appID)
	if err != nil {
		return nil, fmt.Errorf("querying owners: %w", err)
	}
	defer rows.Close()

	owners := make([]*Owner, 0)
	for rows.Next() {
		var owner Owner
		var createdAtStr, lastSeenStr string

		if err := rows.Scan(&owner.ID, &createdAtStr, &lastSeenStr); err != nil {
			return nil, fmt.Errorf("scanning owner: %w", err)
		}

		if owner.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if owner.LastSeen, err = time.Parse(time.RFC3339Nano, lastSeenStr); err != nil {
			return nil, fmt.Errorf("parsing last_seen: %w", err)
		}

		owners = append(owners, &owner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating owners: %w", err)
	}

	return owners, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanStudent.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*Student, error) {
	var student Student
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&student.ID,
		&student.OwnerID,
		&student.Name,
		&student.Email,
		&student.StudentID,
		&student.Phone,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	if student.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if student.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &student, nil
}
