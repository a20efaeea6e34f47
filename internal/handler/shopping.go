package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/forttask/forttask/internal/apperr"
	"github.com/forttask/forttask/internal/model"
	"github.com/forttask/forttask/internal/realtime"
	"github.com/forttask/forttask/internal/store"
)

type ShoppingHandler struct {
	items  *store.ShoppingStore
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewShoppingHandler(items *store.ShoppingStore, hub *realtime.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{items: items, hub: hub, logger: logger}
}

type shoppingRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    *int   `json:"quantity"`
	HouseholdID int64  `json:"household_id"`
}

func (req *shoppingRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	if req.Quantity == nil {
		return apperr.Validation("quantity is required")
	}
	if *req.Quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	return nil
}

func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	item, err := h.create(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(item.HouseholdID, realtime.KindShopping)
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShoppingHandler) create(r *http.Request) (*model.ShoppingItem, error) {
	identity, err := identityFor(r)
	if err != nil {
		return nil, err
	}

	var req shoppingRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	householdID, err := requireOwnHousehold(identity, req.HouseholdID)
	if err != nil {
		return nil, err
	}

	return h.items.Create(req.Name, req.Description, *req.Quantity, householdID, identity.UserID)
}

func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.list(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingHandler) list(r *http.Request) ([]model.ShoppingItem, error) {
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
	return h.items.ListByHousehold(householdID)
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.delete(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.hub.Notify(householdID, realtime.KindShopping)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) delete(r *http.Request) (int64, error) {
	identity, err := identityFor(r)
	if err != nil {
		return 0, err
	}
	id, err := parseIDParam(r)
	if err != nil {
		return 0, err
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		return 0, err
	}
	if item == nil || item.HouseholdID != identity.HouseholdID {
		return 0, apperr.NotFound("shopping item not found")
	}

	if err := h.items.Delete(id); err != nil {
		return 0, err
	}
	return item.HouseholdID, nil
}
