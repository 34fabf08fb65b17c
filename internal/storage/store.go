// Package storage persists users and meetings in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Store wraps the SQLite handle. All query results use UTC timestamps.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			calendar_preference TEXT NOT NULL DEFAULT 'local',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meetings (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			start_time INTEGER NOT NULL,
			duration_minutes INTEGER NOT NULL DEFAULT 30,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_owner_start ON meetings(owner_id, start_time)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user, assigning its ID and timestamps.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	user.ID = uuid.NewString()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.CalendarPreference == "" {
		user.CalendarPreference = domain.CalendarPreferenceLocal
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, calendar_preference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PasswordHash, string(user.CalendarPreference),
		now.Unix(), now.Unix())
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UserByEmail looks a user up by its lowercased email.
func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, calendar_preference, created_at, updated_at
		FROM users
		WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// UserByID looks a user up by primary key.
func (s *Store) UserByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, calendar_preference, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

// UpdateUser persists name and calendar preference changes.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now().UTC().Truncate(time.Second)
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, calendar_preference = ?, updated_at = ?
		WHERE id = ?
	`, user.Name, string(user.CalendarPreference), now.Unix(), user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.User{}, ErrNotFound
	}
	user.UpdatedAt = now
	return user, nil
}

// CreateMeeting inserts a new meeting, assigning its ID and timestamps.
func (s *Store) CreateMeeting(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	now := time.Now().UTC().Truncate(time.Second)
	meeting.ID = uuid.NewString()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	if meeting.DurationMinutes <= 0 {
		meeting.DurationMinutes = 30
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meetings (id, owner_id, title, description, start_time, duration_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, meeting.ID, meeting.OwnerID, meeting.Title, meeting.Description,
		meeting.StartTime.UTC().Unix(), meeting.DurationMinutes, now.Unix(), now.Unix())
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("insert meeting: %w", err)
	}
	return meeting, nil
}

// MeetingByID returns the owner's meeting with the given ID.
func (s *Store) MeetingByID(ctx context.Context, id string, ownerID string) (domain.Meeting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, start_time, duration_minutes, created_at, updated_at
		FROM meetings
		WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	return scanMeeting(row)
}

// MeetingsByOwner returns all of the owner's meetings ordered by start time.
func (s *Store) MeetingsByOwner(ctx context.Context, ownerID string) ([]domain.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, start_time, duration_minutes, created_at, updated_at
		FROM meetings
		WHERE owner_id = ?
		ORDER BY start_time ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

// MeetingsFrom returns the owner's meetings starting at or after from,
// ordered by start time.
func (s *Store) MeetingsFrom(ctx context.Context, ownerID string, from time.Time) ([]domain.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, start_time, duration_minutes, created_at, updated_at
		FROM meetings
		WHERE owner_id = ? AND start_time >= ?
		ORDER BY start_time ASC
	`, ownerID, from.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()
	return collectMeetings(rows)
}

// UpdateMeeting persists changes to the owner's meeting.
func (s *Store) UpdateMeeting(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	now := time.Now().UTC().Truncate(time.Second)
	result, err := s.db.ExecContext(ctx, `
		UPDATE meetings
		SET title = ?, description = ?, start_time = ?, duration_minutes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, meeting.Title, meeting.Description, meeting.StartTime.UTC().Unix(),
		meeting.DurationMinutes, now.Unix(), meeting.ID, meeting.OwnerID)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("update meeting: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.Meeting{}, ErrNotFound
	}
	meeting.UpdatedAt = now
	return meeting, nil
}

// DeleteMeeting removes the owner's meeting with the given ID.
func (s *Store) DeleteMeeting(ctx context.Context, id string, ownerID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM meetings WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var preference string
	var createdAt, updatedAt int64
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&preference, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	user.CalendarPreference = domain.CalendarPreference(preference)
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return user, nil
}

func scanMeeting(row rowScanner) (domain.Meeting, error) {
	var meeting domain.Meeting
	var startTime, createdAt, updatedAt int64
	err := row.Scan(&meeting.ID, &meeting.OwnerID, &meeting.Title, &meeting.Description,
		&startTime, &meeting.DurationMinutes, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Meeting{}, ErrNotFound
	}
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("scan meeting: %w", err)
	}
	meeting.StartTime = time.Unix(startTime, 0).UTC()
	meeting.CreatedAt = time.Unix(createdAt, 0).UTC()
	meeting.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return meeting, nil
}

func collectMeetings(rows *sql.Rows) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	return meetings, rows.Err()
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
