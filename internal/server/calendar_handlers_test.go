package server

import (
	"net/http"
	"testing"
	"time"
)

func TestCalendarEventsWindow(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	router := srv.Router()
	token, _ := registerUser(t, router, "alice@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	meetings := []struct {
		title    string
		start    time.Time
		duration int
	}{
		{"Ancient retro", now.Add(-10 * 24 * time.Hour), 30},
		{"Recent sync", now.Add(-2 * 24 * time.Hour), 45},
		{"Upcoming review", now.Add(24 * time.Hour), 60},
	}
	for _, m := range meetings {
		rec := doRequest(t, router, http.MethodPost, "/api/meetings", token, map[string]any{
			"title":      m.title,
			"start_time": m.start.Format(time.RFC3339),
			"duration":   m.duration,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %q failed: %d", m.title, rec.Code)
		}
	}

	rec := doRequest(t, router, http.MethodGet, "/api/calendar/events", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var resp calendarEventsResponse
	decodeJSON(t, rec, &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events in the window, got %d: %+v", len(resp.Events), resp.Events)
	}
	if resp.Events[0].Title != "Recent sync" || resp.Events[1].Title != "Upcoming review" {
		t.Fatalf("unexpected event order: %q then %q", resp.Events[0].Title, resp.Events[1].Title)
	}

	first := resp.Events[0]
	if !first.End.Equal(first.Start.Add(45 * time.Minute)) {
		t.Fatalf("expected end = start + duration, got start %v end %v", first.Start, first.End)
	}
}

func TestCalendarSync(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	router := srv.Router()
	token, _ := registerUser(t, router, "alice@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/calendar/sync", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeJSON(t, rec, &resp)
	if !resp.Success || resp.Message != "Calendar sync request queued" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
