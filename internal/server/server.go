package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/forttask/forttask/internal/auth"
	"github.com/forttask/forttask/internal/config"
	"github.com/forttask/forttask/internal/handler"
	"github.com/forttask/forttask/internal/middleware"
	"github.com/forttask/forttask/internal/realtime"
	"github.com/forttask/forttask/internal/session"
	"github.com/forttask/forttask/internal/store"
)

type Server struct {
	db          *sql.DB
	hub         *realtime.Hub
	sessions    *session.Manager
	authH       *handler.AuthHandler
	choreH      *handler.ChoreHandler
	billH       *handler.BillHandler
	eventH      *handler.EventHandler
	shoppingH   *handler.ShoppingHandler
	householdH  *handler.HouseholdHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, logger.With("component", "realtime"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	choreStore := store.NewChoreStore(db)
	billStore := store.NewBillStore(db)
	eventStore := store.NewEventStore(db)
	shoppingStore := store.NewShoppingStore(db)

	verifier := auth.NewVerifier(userStore, householdStore)
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionLifetime)

	return &Server{
		db:          db,
		hub:         hub,
		sessions:    sessions,
		authH:       handler.NewAuthHandler(verifier, sessions, userStore, householdStore, logger.With("component", "auth")),
		choreH:      handler.NewChoreHandler(choreStore, hub, logger.With("component", "chore")),
		billH:       handler.NewBillHandler(billStore, hub, logger.With("component", "bill")),
		eventH:      handler.NewEventHandler(eventStore, userStore, hub, logger.With("component", "event")),
		shoppingH:   handler.NewShoppingHandler(shoppingStore, hub, logger.With("component", "shopping")),
		householdH:  handler.NewHouseholdHandler(householdStore, userStore, sessions, logger.With("component", "household")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no session required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessions)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Chore API routes
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)

	// Bill API routes
	mux.HandleFunc("POST /api/bills", s.billH.Create)
	mux.HandleFunc("GET /api/bills", s.billH.List)
	mux.HandleFunc("DELETE /api/bills/{id}", s.billH.Delete)

	// Calendar event API routes
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Shopping list API routes
	mux.HandleFunc("POST /api/shopping", s.shoppingH.Create)
	mux.HandleFunc("GET /api/shopping", s.shoppingH.List)
	mux.HandleFunc("DELETE /api/shopping/{id}", s.shoppingH.Delete)

	// Household API routes
	mux.HandleFunc("GET /api/households", s.householdH.Get)
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("DELETE /api/households/{id}", s.householdH.Delete)

	// WebSocket
	mux.HandleFunc("GET /ws", realtime.ServeWS(s.hub, s.logger.With("component", "websocket")))
}
