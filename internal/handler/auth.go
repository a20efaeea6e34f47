package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/forttask/forttask/internal/apperr"
	"github.com/forttask/forttask/internal/auth"
	"github.com/forttask/forttask/internal/middleware"
	"github.com/forttask/forttask/internal/model"
	"github.com/forttask/forttask/internal/session"
	"github.com/forttask/forttask/internal/store"
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

type AuthHandler struct {
	verifier   *auth.Verifier
	sessions   *session.Manager
	users      *store.UserStore
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewAuthHandler(
	verifier *auth.Verifier,
	sessions *session.Manager,
	users *store.UserStore,
	households *store.HouseholdStore,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		verifier:   verifier,
		sessions:   sessions,
		users:      users,
		households: households,
		logger:     logger,
	}
}

type sessionResponse struct {
	Token    string        `json:"token"`
	Identity auth.Identity `json:"identity"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.Lifetime().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, identity auth.Identity, status int) {
	token, err := h.sessions.Issue(identity)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.setSessionCookie(w, r, token)
	writeJSON(w, status, sessionResponse{Token: token, Identity: identity})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	identity, err := h.verifier.Verify(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One generic rejection for unknown user and wrong password.
			respondError(w, h.logger, apperr.Unauthorized("invalid username or password"))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	h.issueSession(w, r, *identity, http.StatusOK)
}

type registerRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	DisplayName   string `json:"display_name"`
	HouseholdName string `json:"household_name"`
	JoinCode      string `json:"join_code"`
}

func (req *registerRequest) validate() error {
	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.HouseholdName = strings.TrimSpace(req.HouseholdName)
	req.JoinCode = strings.TrimSpace(req.JoinCode)

	if len(req.Username) < minUsernameLen {
		return apperr.Validation("username must be at least %d characters", minUsernameLen)
	}
	if len(req.Password) < minPasswordLen {
		return apperr.Validation("password must be at least %d characters", minPasswordLen)
	}
	if req.HouseholdName == "" && req.JoinCode == "" {
		return apperr.Validation("household_name or join_code is required")
	}
	if req.HouseholdName != "" && req.JoinCode != "" {
		return apperr.Validation("provide household_name or join_code, not both")
	}
	return nil
}

// Register creates a new account and either founds a new household or
// joins an existing one by code, then issues a session immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, h.logger, err)
		return
	}

	founding := req.JoinCode == ""
	var household *model.Household
	var err error
	if founding {
		household, err = h.households.Create(req.HouseholdName)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
	} else {
		household, err = h.households.GetByJoinCode(req.JoinCode)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		if household == nil {
			respondError(w, h.logger, apperr.Validation("unknown join code"))
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, err := h.users.Create(req.Username, req.DisplayName, hash, household.ID)
	if err != nil {
		if founding {
			// Don't leave an empty household behind.
			if derr := h.households.Delete(household.ID); derr != nil {
				h.logger.Error("clean up household after failed registration", "error", derr)
			}
		}
		if errors.Is(err, store.ErrUsernameTaken) {
			respondError(w, h.logger, apperr.New(apperr.KindConflict, "username already taken"))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	if founding {
		if err := h.households.SetOwner(household.ID, user.ID); err != nil {
			respondError(w, h.logger, err)
			return
		}
	}

	identity := auth.Identity{
		UserID:        user.ID,
		Username:      user.Username,
		HouseholdID:   household.ID,
		HouseholdName: household.Name,
	}
	h.issueSession(w, r, identity, http.StatusCreated)
}

// Logout clears the cookie. Tokens are stateless, so there is nothing to
// revoke server-side; an already-issued token stays valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the verified identity of the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFor(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}
