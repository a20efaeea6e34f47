package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/forttask/forttask/internal/model"
)

func TestBillCreate(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	h := NewBillHandler(env.bills, env.hub, env.logger)

	body := jsonBody(t, map[string]any{
		"name":     "rent",
		"amount":   1450.50,
		"due_date": "2026-09-30T00:00:00Z",
	})
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/bills", body, identity))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var bill model.Bill
	decodeResponse(t, rec, &bill)
	if bill.Amount != 1450.50 || bill.HouseholdID != identity.HouseholdID {
		t.Errorf("unexpected bill: %+v", bill)
	}
}

func TestBillCreateInvalidAmount(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	h := NewBillHandler(env.bills, env.hub, env.logger)

	for _, body := range []map[string]any{
		{"name": "rent", "due_date": "2026-09-30T00:00:00Z"},               // missing
		{"name": "rent", "amount": 0, "due_date": "2026-09-30T00:00:00Z"},  // zero
		{"name": "rent", "amount": -5, "due_date": "2026-09-30T00:00:00Z"}, // negative
	} {
		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest(http.MethodPost, "/api/bills", jsonBody(t, body), identity))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("amount %v: status = %d, want 400", body["amount"], rec.Code)
		}
	}
}

func TestBillListRequiresHouseholdParam(t *testing.T) {
	env := newTestEnv(t)
	identity := env.seedMember(t, "alpha", "alice")
	h := NewBillHandler(env.bills, env.hub, env.logger)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/bills", nil, identity))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := errorMessage(t, rec); !strings.Contains(msg, "household_id") {
		t.Errorf("error = %q, want mention of household_id", msg)
	}
}

func TestBillDeleteOtherHousehold(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedMember(t, "alpha", "alice")
	intruder := env.seedMember(t, "beta", "bob")
	h := NewBillHandler(env.bills, env.hub, env.logger)

	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	bill, err := env.bills.Create("rent", 1450, due, "", owner.HouseholdID, owner.UserID)
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	req := authedRequest(http.MethodDelete, "/api/bills/"+strconv.FormatInt(bill.ID, 10), nil, intruder)
	req.SetPathValue("id", strconv.FormatInt(bill.ID, 10))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
