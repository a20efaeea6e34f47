package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forttask/forttask/internal/auth"
	"github.com/forttask/forttask/internal/database"
	"github.com/forttask/forttask/internal/model"
	"github.com/forttask/forttask/internal/realtime"
	"github.com/forttask/forttask/internal/session"
	"github.com/forttask/forttask/internal/store"
)

// testEnv wires the handler stack against an in-memory database, the way
// the server package does, minus the HTTP listener.
type testEnv struct {
	db         *sql.DB
	users      *store.UserStore
	households *store.HouseholdStore
	chores     *store.ChoreStore
	bills      *store.BillStore
	shopping   *store.ShoppingStore
	events     *store.EventStore
	hub        *realtime.Hub
	sessions   *session.Manager
	logger     *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		db:         db,
		users:      store.NewUserStore(db),
		households: store.NewHouseholdStore(db),
		chores:     store.NewChoreStore(db),
		bills:      store.NewBillStore(db),
		shopping:   store.NewShoppingStore(db),
		events:     store.NewEventStore(db),
		hub:        realtime.NewHub(realtime.NewRegistry(), logger),
		sessions:   session.NewManager([]byte("test-secret"), 24*time.Hour),
		logger:     logger,
	}
}

// seedMember creates a household and a member user, returning the identity
// the session middleware would attach.
func (env *testEnv) seedMember(t *testing.T, householdName, username string) auth.Identity {
	t.Helper()
	h, err := env.households.Create(householdName)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	u, err := env.users.Create(username, username, "x", h.ID)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := env.households.SetOwner(h.ID, u.ID); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	return auth.Identity{
		UserID:        u.ID,
		Username:      u.Username,
		HouseholdID:   h.ID,
		HouseholdName: h.Name,
	}
}

// addMember adds another user to the identity's household.
func (env *testEnv) addMember(t *testing.T, identity auth.Identity, username string) *model.User {
	t.Helper()
	u, err := env.users.Create(username, username, "x", identity.HouseholdID)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// authedRequest builds a request with a verified identity already on the
// context, as middleware.RequireAuth would leave it.
func authedRequest(method, target string, body io.Reader, identity auth.Identity) *http.Request {
	r := httptest.NewRequest(method, target, body)
	return r.WithContext(auth.WithIdentity(r.Context(), identity))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeResponse(t, rec, &body)
	return body["error"]
}
