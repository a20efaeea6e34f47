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

type ChoreHandler struct {
	chores *store.ChoreStore
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewChoreHandler(chores *store.ChoreStore, hub *realtime.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: chores, hub: hub, logger: logger}
}

type choreRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	HouseholdID int64  `json:"household_id"`
}

func (req *choreRequest) validate() (time.Time, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return time.Time{}, apperr.Validation("name is required")
	}
	if req.DueDate == "" {
		return time.Time{}, apperr.Validation("due_date is required")
	}
	due, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return time.Time{}, apperr.Validation("due_date must be an RFC 3339 timestamp")
	}
	return due, nil
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	chore, err := h.create(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(chore.HouseholdID, realtime.KindChores)
	writeJSON(w, http.StatusCreated, chore)
}

func (h *ChoreHandler) create(r *http.Request) (*model.Chore, error) {
	identity, err := identityFor(r)
	if err != nil {
		return nil, err
	}

	var req choreRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	due, err := req.validate()
	if err != nil {
		return nil, err
	}
	householdID, err := requireOwnHousehold(identity, req.HouseholdID)
	if err != nil {
		return nil, err
	}

	return h.chores.Create(req.Name, req.Description, req.Priority, due, householdID, identity.UserID)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.list(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) list(r *http.Request) ([]model.Chore, error) {
	identity, err := identityFor(r)
	if err != nil {
		return nil, err
	}
	householdID, err := queryID(r, "household_id")
	if err != nil {
		return nil, err
	}
	if _, err := requireOwnHousehold(identity, householdID); err != nil {
		return nil, err
	}
	return h.chores.ListByHousehold(householdID)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.delete(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(householdID, realtime.KindChores)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChoreHandler) delete(r *http.Request) (int64, error) {
	identity, err := identityFor(r)
	if err != nil {
		return 0, err
	}
	id, err := parseIDParam(r)
	if err != nil {
		return 0, err
	}

	chore, err := h.chores.GetByID(id)
	if err != nil {
		return 0, err
	}
	// A record in another household looks identical to a missing one.
	if chore == nil || chore.HouseholdID != identity.HouseholdID {
		return 0, apperr.NotFound("chore not found")
	}

	if err := h.chores.Delete(id); err != nil {
		return 0, err
	}
	return chore.HouseholdID, nil
}
