package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/forttask/forttask/internal/model"
)

func TestEventCreateWithAttendees(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	carol := env.addMember(t, identity, "carol")
	h := NewEventHandler(env.events, env.users, env.hub, env.logger)

	body := jsonBody(t, map[string]any{
		"name":      "dinner",
		"date":      "2026-10-03T18:00:00Z",
		"attendees": []int64{identity.UserID, carol.ID},
	})
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/events", body, identity))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var event model.Event
	decodeResponse(t, rec, &event)
	if len(event.Attendees) != 2 {
		t.Errorf("attendees = %v, want 2 entries", event.Attendees)
	}
}

func TestEventCreateForeignAttendee(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	outsider := env.seedMember(t, "beta", "bob")
	h := NewEventHandler(env.events, env.users, env.hub, env.logger)

	body := jsonBody(t, map[string]any{
		"name":      "dinner",
		"date":      "2026-10-03T18:00:00Z",
		"attendees": []int64{outsider.UserID},
	})
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/events", body, identity))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEventCreateBadDate(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	h := NewEventHandler(env.events, env.users, env.hub, env.logger)

	body := jsonBody(t, map[string]any{"name": "dinner", "date": "next tuesday"})
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/events", body, identity))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEventListRequiresUserParam(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	h := NewEventHandler(env.events, env.users, env.hub, env.logger)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/events", nil, identity))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); !strings.Contains(msg, "user_id") {
		t.Errorf("error = %q, want mention of user_id", msg)
	}
}

func TestEventListHouseholdMember(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	carol := env.addMember(t, identity, "carol")
	h := NewEventHandler(env.events, env.users, env.hub, env.logger)

	date := "2026-10-03T18:00:00Z"
	body := jsonBody(t, map[string]any{"name": "dinner", "date": date, "attendees": []int64{carol.ID}})
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/events", body, identity))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}

	// Listing a fellow member's events is allowed.
	rec = httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/events?user_id="+strconv.FormatInt(carol.ID, 10), nil, identity))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", rec.Code, rec.Body)
	}
	var events []model.Event
	decodeResponse(t, rec, &events)
	if len(events) != 1 || events[0].Name != "dinner" {
		t.Errorf("events = %+v, want just dinner", events)
	}
}

func TestEventListOtherHousehold(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	outsider := env.seedMember(t, "beta", "bob")
	h := NewEventHandler(env.events, env.users, env.hub, env.logger)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/events?user_id="+strconv.FormatInt(outsider.UserID, 10), nil, identity))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestEventDelete(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	h := NewEventHandler(env.events, env.users, env.hub, env.logger)

	body := jsonBody(t, map[string]any{"name": "dinner", "date": "2026-10-03T18:00:00Z"})
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/events", body, identity))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var event model.Event
	decodeResponse(t, rec, &event)

	req := authedRequest(http.MethodDelete, "/api/events/"+strconv.FormatInt(event.ID, 10), nil, identity)
	req.SetPathValue("id", strconv.FormatInt(event.ID, 10))
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 after delete", rec.Code)
	}
}
