package routes

import (
	"net/http"

	"ecofinds/controllers"
	"ecofinds/middleware"
	"ecofinds/utils"

	"github.com/gorilla/mux"
)

// Controllers groups the handlers mounted under /api.
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Carts    *controllers.CartController
	Orders   *controllers.OrderController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, tokens middleware.TokenParser) {
	auth := middleware.AuthMiddleware(tokens)

	router.HandleFunc("/", index).Methods(http.MethodGet)
	router.HandleFunc("/health", health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/register", c.Users.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", c.Users.Login).Methods(http.MethodPost)
	profile := api.PathPrefix("/auth").Subrouter()
	profile.Use(auth)
	profile.HandleFunc("/me", c.Users.GetProfile).Methods(http.MethodGet)
	profile.HandleFunc("/profile", c.Users.UpdateProfile).Methods(http.MethodPut)

	// Product routes; mylistings is registered before {id} so it is not
	// captured as an id.
	products := api.PathPrefix("/products").Subrouter()
	products.Handle("/user/mylistings", auth(http.HandlerFunc(c.Products.GetMyListings))).Methods(http.MethodGet)
	products.HandleFunc("", c.Products.GetProducts).Methods(http.MethodGet)
	products.HandleFunc("/{id}", c.Products.GetProductByID).Methods(http.MethodGet)
	products.Handle("", auth(http.HandlerFunc(c.Products.CreateProduct))).Methods(http.MethodPost)
	products.Handle("/{id}", auth(http.HandlerFunc(c.Products.UpdateProduct))).Methods(http.MethodPut)
	products.Handle("/{id}", auth(http.HandlerFunc(c.Products.DeleteProduct))).Methods(http.MethodDelete)

	// Cart routes
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(auth)
	cart.HandleFunc("", c.Carts.GetCart).Methods(http.MethodGet)
	cart.HandleFunc("/add", c.Carts.AddToCart).Methods(http.MethodPost)
	cart.HandleFunc("/update/{productId}", c.Carts.UpdateCartItem).Methods(http.MethodPut)
	cart.HandleFunc("/remove/{productId}", c.Carts.RemoveFromCart).Methods(http.MethodDelete)
	cart.HandleFunc("/clear", c.Carts.ClearCart).Methods(http.MethodDelete)

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(auth)
	orders.HandleFunc("", c.Orders.CreateOrder).Methods(http.MethodPost)
	orders.HandleFunc("", c.Orders.GetOrders).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", c.Orders.GetOrder).Methods(http.MethodGet)
	orders.HandleFunc("/{id}/cancel", c.Orders.CancelOrder).Methods(http.MethodPut)

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(notFound)
}

func index(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "EcoFinds API - Sustainable Second-Hand Marketplace",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"auth":     "/api/auth",
			"products": "/api/products",
			"cart":     "/api/cart",
			"orders":   "/api/orders",
		},
	})
}

func health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "Route not found")
}
