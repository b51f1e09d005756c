package controllers

import (
	"net/http"

	"ecofinds/models"
	"ecofinds/services"
	"ecofinds/utils"
)

// OrderController handles checkout and order history
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder checks out the caller's cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in services.PlaceOrderInput
	if err := decodeBody(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	order, err := oc.orders.PlaceOrder(r.Context(), userID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, order)
}

// GetOrders lists the caller's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := oc.orders.ListOrders(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondList(w, orders, len(orders))
}

// GetOrder returns one of the caller's orders
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := oc.orders.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, order)
}

// CancelOrder cancels an order and puts its products back on sale
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := oc.orders.CancelOrder(r.Context(), userID, orderID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, order)
}
