package store

import (
	"database/sql"
	"testing"

	"github.com/forttask/forttask/internal/database"
	"github.com/forttask/forttask/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHousehold creates a household with one member user and returns both.
func seedHousehold(t *testing.T, db *sql.DB, name, username string) (*model.Household, *model.User) {
	t.Helper()
	households := NewHouseholdStore(db)
	users := NewUserStore(db)

	h, err := households.Create(name)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	u, err := users.Create(username, username, "x", h.ID)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := households.SetOwner(h.ID, u.ID); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	return h, u
}
