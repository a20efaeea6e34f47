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

type BillHandler struct {
	bills  *store.BillStore
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewBillHandler(bills *store.BillStore, hub *realtime.Hub, logger *slog.Logger) *BillHandler {
	return &BillHandler{bills: bills, hub: hub, logger: logger}
}

type billRequest struct {
	Name        string   `json:"name"`
	Amount      *float64 `json:"amount"`
	DueDate     string   `json:"due_date"`
	Description string   `json:"description"`
	HouseholdID int64    `json:"household_id"`
}

func (req *billRequest) validate() (time.Time, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return time.Time{}, apperr.Validation("name is required")
	}
	if req.Amount == nil {
		return time.Time{}, apperr.Validation("amount is required")
	}
	if *req.Amount <= 0 {
		return time.Time{}, apperr.Validation("amount must be greater than zero")
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

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	bill, err := h.create(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(bill.HouseholdID, realtime.KindBills)
	writeJSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) create(r *http.Request) (*model.Bill, error) {
	identity, err := identityFor(r)
	if err != nil {
		return nil, err
	}

	var req billRequest
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

	return h.bills.Create(req.Name, *req.Amount, due, req.Description, householdID, identity.UserID)
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.list(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if bills == nil {
		bills = []model.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func (h *BillHandler) list(r *http.Request) ([]model.Bill, error) {
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
	return h.bills.ListByHousehold(householdID)
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.delete(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(householdID, realtime.KindBills)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BillHandler) delete(r *http.Request) (int64, error) {
	identity, err := identityFor(r)
	if err != nil {
		return 0, err
	}
	id, err := parseIDParam(r)
	if err != nil {
		return 0, err
	}

	bill, err := h.bills.GetByID(id)
	if err != nil {
		return 0, err
	}
	if bill == nil || bill.HouseholdID != identity.HouseholdID {
		return 0, apperr.NotFound("bill not found")
	}

	if err := h.bills.Delete(id); err != nil {
		return 0, err
	}
	return bill.HouseholdID, nil
}
