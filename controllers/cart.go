package controllers

import (
	"net/http"

	"ecofinds/services"
	"ecofinds/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartController handles cart-related requests
type CartController struct {
	carts *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// GetCart returns the caller's cart, creating it when missing
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := cc.carts.GetOrCreate(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, cart)
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := cc.carts.AddItem(r.Context(), userID, productID, quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, cart)
}

// UpdateCartItem sets the quantity of a product already in the cart
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(r, "productId")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil || req.Quantity == nil {
		utils.WriteError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	cart, err := cc.carts.UpdateItem(r.Context(), userID, productID, *req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, cart)
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(r, "productId")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	cart, err := cc.carts.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, cart)
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := cc.carts.Clear(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, cart)
}
