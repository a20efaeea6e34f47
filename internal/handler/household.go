package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/forttask/forttask/internal/apperr"
	"github.com/forttask/forttask/internal/middleware"
	"github.com/forttask/forttask/internal/model"
	"github.com/forttask/forttask/internal/session"
	"github.com/forttask/forttask/internal/store"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	users      *store.UserStore
	sessions   *session.Manager
	logger     *slog.Logger
}

func NewHouseholdHandler(households *store.HouseholdStore, users *store.UserStore, sessions *session.Manager, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: households, users: users, sessions: sessions, logger: logger}
}

// Get returns the caller's household together with its members. An
// explicit household_id query parameter is accepted but must match the
// caller's own.
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFor(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	var requested int64
	if r.URL.Query().Get("household_id") != "" {
		requested, err = queryID(r, "household_id")
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
	}
	householdID, err := requireOwnHousehold(identity, requested)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	household, err := h.households.GetByID(householdID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if household == nil {
		respondError(w, h.logger, apperr.NotFound("household not found"))
		return
	}

	members, err := h.users.ListByHousehold(householdID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []model.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"household": household,
		"members":   members,
	})
}

type householdRequest struct {
	Name string `json:"name"`
}

// Create founds a new household with the caller as owner and moves the
// caller into it. The identity embedded in the session token is immutable,
// so a fresh token is issued for the new household.
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFor(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req householdRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, h.logger, apperr.Validation("name is required"))
		return
	}

	household, err := h.households.Create(req.Name)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.households.SetOwner(household.ID, identity.UserID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.users.MoveToHousehold(identity.UserID, household.ID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	// Re-read so the response carries the assigned owner.
	household, err = h.households.GetByID(household.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	identity.HouseholdID = household.ID
	identity.HouseholdName = household.Name

	token, err := h.sessions.Issue(identity)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.Lifetime().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"household": household,
		"token":     token,
	})
}

// Delete removes the caller's household. Only the owner may delete it;
// member rows and all household-scoped records cascade away.
func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFor(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	household, err := h.households.GetByID(id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if household == nil || household.ID != identity.HouseholdID {
		respondError(w, h.logger, apperr.NotFound("household not found"))
		return
	}
	if household.OwnerID != identity.UserID {
		respondError(w, h.logger, apperr.Forbidden("only the owner can delete a household"))
		return
	}

	if err := h.households.Delete(id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
