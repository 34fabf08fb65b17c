package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "smartmeet.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *Store, email string) domain.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), domain.User{
		Name:         "Alice",
		Email:        email,
		PasswordHash: "hashed",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateAndFetchUser(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, store, "Alice@Example.com")
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if created.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", created.Email)
	}
	if created.CalendarPreference != domain.CalendarPreferenceLocal {
		t.Fatalf("expected default preference, got %q", created.CalendarPreference)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps, got %+v", created)
	}

	byEmail, err := store.UserByEmail(ctx, "ALICE@example.COM")
	if err != nil {
		t.Fatalf("user by email: %v", err)
	}
	if byEmail.ID != created.ID || byEmail.PasswordHash != "hashed" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	byID, err := store.UserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("user by id: %v", err)
	}
	if byID.Email != created.Email {
		t.Fatalf("unexpected user: %+v", byID)
	}

	if _, err := store.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	createTestUser(t, store, "alice@example.com")

	_, err := store.CreateUser(context.Background(), domain.User{
		Name:         "Other Alice",
		Email:        "ALICE@example.com",
		PasswordHash: "hashed2",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	user.Name = "Alice Cooper"
	user.CalendarPreference = domain.CalendarPreferenceDevice
	updated, err := store.UpdateUser(ctx, user)
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Name != "Alice Cooper" {
		t.Fatalf("unexpected name: %q", updated.Name)
	}

	fetched, err := store.UserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("user by id: %v", err)
	}
	if fetched.CalendarPreference != domain.CalendarPreferenceDevice {
		t.Fatalf("preference not persisted: %+v", fetched)
	}

	missing := user
	missing.ID = "missing"
	if _, err := store.UpdateUser(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMeetingLifecycle(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "alice@example.com")
	other := createTestUser(t, store, "bob@example.com")

	start := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	created, err := store.CreateMeeting(ctx, domain.Meeting{
		OwnerID:     owner.ID,
		Title:       "design review",
		Description: "quarterly sync",
		StartTime:   start,
	})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if created.DurationMinutes != 30 {
		t.Fatalf("expected default duration, got %d", created.DurationMinutes)
	}

	fetched, err := store.MeetingByID(ctx, created.ID, owner.ID)
	if err != nil {
		t.Fatalf("meeting by id: %v", err)
	}
	if !fetched.StartTime.Equal(start) || fetched.Title != "design review" {
		t.Fatalf("unexpected meeting: %+v", fetched)
	}

	if _, err := store.MeetingByID(ctx, created.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected scoped lookup miss, got %v", err)
	}

	earlier, err := store.CreateMeeting(ctx, domain.Meeting{
		OwnerID:   owner.ID,
		Title:     "standup",
		StartTime: start.Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}

	listed, err := store.MeetingsByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list meetings: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != earlier.ID || listed[1].ID != created.ID {
		t.Fatalf("expected start-time ordering, got %+v", listed)
	}

	created.Title = "design review v2"
	created.DurationMinutes = 45
	updated, err := store.UpdateMeeting(ctx, created)
	if err != nil {
		t.Fatalf("update meeting: %v", err)
	}
	if updated.Title != "design review v2" || updated.DurationMinutes != 45 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := store.DeleteMeeting(ctx, created.ID, owner.ID); err != nil {
		t.Fatalf("delete meeting: %v", err)
	}
	if err := store.DeleteMeeting(ctx, created.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.MeetingByID(ctx, created.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted meeting to be gone, got %v", err)
	}
}

func TestMeetingsFromFiltersWindow(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "alice@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	for _, offset := range []time.Duration{-240 * time.Hour, -24 * time.Hour, 24 * time.Hour} {
		_, err := store.CreateMeeting(ctx, domain.Meeting{
			OwnerID:   owner.ID,
			Title:     "meeting",
			StartTime: now.Add(offset),
		})
		if err != nil {
			t.Fatalf("create meeting: %v", err)
		}
	}

	events, err := store.MeetingsFrom(ctx, owner.ID, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("meetings from: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 meetings in window, got %d", len(events))
	}
	if !events[0].StartTime.Before(events[1].StartTime) {
		t.Fatalf("expected ascending order, got %+v", events)
	}
}
