package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/forttask/forttask/internal/apperr"
	"github.com/forttask/forttask/internal/model"
	"github.com/forttask/forttask/internal/realtime"
	"github.com/forttask/forttask/internal/store"
)

type EventHandler struct {
	events *store.EventStore
	users  *store.UserStore
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewEventHandler(events *store.EventStore, users *store.UserStore, hub *realtime.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, users: users, hub: hub, logger: logger}
}

type eventRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Attendees   []int64 `json:"attendees"`
	HouseholdID int64   `json:"household_id"`
}

func (req *eventRequest) validate() (time.Time, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return time.Time{}, apperr.Validation("name is required")
	}
	if req.Date == "" {
		return time.Time{}, apperr.Validation("date is required")
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return time.Time{}, apperr.Validation("date must be an RFC 3339 timestamp")
	}
	return date, nil
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	event, err := h.create(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(event.HouseholdID, realtime.KindEvents)
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) create(r *http.Request) (*model.Event, error) {
	identity, err := identityFor(r)
	if err != nil {
		return nil, err
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	date, err := req.validate()
	if err != nil {
		return nil, err
	}
	householdID, err := requireOwnHousehold(identity, req.HouseholdID)
	if err != nil {
		return nil, err
	}

	// Every attendee must be a member of the caller's household.
	for _, userID := range req.Attendees {
		attendee, err := h.users.GetByID(userID)
		if err != nil {
			return nil, err
		}
		if attendee == nil || attendee.HouseholdID != householdID {
			return nil, apperr.Validation("attendee %d is not a member of the household", userID)
		}
	}

	return h.events.Create(req.Name, req.Description, date, householdID, identity.UserID, req.Attendees)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.list(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// list returns the events the named user attends. The user id must belong
// to the caller's household.
func (h *EventHandler) list(r *http.Request) ([]model.Event, error) {
	identity, err := identityFor(r)
	if err != nil {
		return nil, err
	}
	userID, err := queryID(r, "user_id")
	if err != nil {
		return nil, err
	}

	if userID != identity.UserID {
		user, err := h.users.GetByID(userID)
		if err != nil {
			return nil, err
		}
		if user == nil || user.HouseholdID != identity.HouseholdID {
			return nil, apperr.Forbidden("household mismatch")
		}
	}

	return h.events.ListByAttendee(userID)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.delete(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(householdID, realtime.KindEvents)
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) delete(r *http.Request) (int64, error) {
	identity, err := identityFor(r)
	if err != nil {
		return 0, err
	}
	id, err := parseIDParam(r)
	if err != nil {
		return 0, err
	}

	event, err := h.events.GetByID(id)
	if err != nil {
		return 0, err
	}
	if event == nil || event.HouseholdID != identity.HouseholdID {
		return 0, apperr.NotFound("event not found")
	}

	if err := h.events.Delete(id); err != nil {
		return 0, err
	}
	return event.HouseholdID, nil
}
