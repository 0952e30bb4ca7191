package handlers

import (
	"math"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/cafeteria/database/dbhelper"
	"github.com/ray-remotestate/cafeteria/utils"
)

// Column limits: stock is INTEGER, price is NUMERIC(10,2).
var (
	maxStock = math.MaxInt32
	maxPrice = decimal.New(1, 8)
)

func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := dbhelper.ListMenuItems(r.Context(), h.DB)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	type Input struct {
		Name     string           `json:"name"`
		Category string           `json:"category"`
		Price    *decimal.Decimal `json:"price"`
		Stock    int              `json:"stock"`
	}

	var input Input
	if err := decodeBody(r, &input); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if input.Name == "" || input.Category == "" || input.Price == nil {
		utils.RespondMessage(w, http.StatusBadRequest, "Name, category, and price required")
		return
	}
	if input.Price.IsNegative() || input.Stock < 0 {
		utils.RespondMessage(w, http.StatusBadRequest, "Price and stock must not be negative")
		return
	}
	if !input.Price.LessThan(maxPrice) || input.Stock > maxStock {
		utils.RespondMessage(w, http.StatusBadRequest, "Price or stock too large")
		return
	}

	id, err := dbhelper.CreateMenuItem(r.Context(), h.DB, input.Name, input.Category, *input.Price, input.Stock)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Menu item created",
		"id":      id,
	})
}

// UpdateMenuItem only changes stock; name, category and price are fixed.
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	var input struct {
		Stock *int `json:"stock"`
	}
	if err := decodeBody(r, &input); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if input.Stock == nil {
		utils.RespondMessage(w, http.StatusBadRequest, "Stock value required")
		return
	}
	if *input.Stock < 0 {
		utils.RespondMessage(w, http.StatusBadRequest, "Stock must not be negative")
		return
	}
	if *input.Stock > maxStock {
		utils.RespondMessage(w, http.StatusBadRequest, "Stock too large")
		return
	}

	if err := dbhelper.UpdateMenuStock(r.Context(), h.DB, id, *input.Stock); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Stock updated")
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if err := dbhelper.DeleteMenuItem(r.Context(), h.DB, id); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Menu item deleted")
}
