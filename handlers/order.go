package handlers

import (
	"net/http"

	"github.com/ray-remotestate/cafeteria/database/dbhelper"
	"github.com/ray-remotestate/cafeteria/middlewares"
	"github.com/ray-remotestate/cafeteria/models"
	"github.com/ray-remotestate/cafeteria/utils"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	var req struct {
		Items []models.OrderLine `json:"items"`
	}
	if err := decodeBody(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	placed, err := h.Orders.PlaceOrder(r.Context(), claims.UserID, req.Items)
	if err != nil {
		h.Metrics.OrderFailed(err)
		utils.RespondError(w, r, err)
		return
	}
	h.Metrics.OrderPlaced(placed.TotalAmount)

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Order placed",
		"order_id":     placed.OrderID,
		"total_amount": placed.TotalAmount,
	})
}

func (h *Handler) ListOrdersAdmin(w http.ResponseWriter, r *http.Request) {
	orders, err := dbhelper.ListOrdersWithItems(r.Context(), h.DB)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}

func (h *Handler) OrdersSummary(w http.ResponseWriter, r *http.Request) {
	var (
		summary models.OrderSummary
		err     error
	)

	summary.TotalOrders, summary.TotalRevenue, err = dbhelper.OrderTotals(r.Context(), h.DB)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	summary.TotalUsers, err = dbhelper.CountUsers(r.Context(), h.DB)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, summary)
}
