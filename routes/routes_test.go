package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecofinds/controllers"
	"ecofinds/middleware"
	"ecofinds/services"
	"ecofinds/store/memstore"
	"ecofinds/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	st := memstore.New()
	tokens := utils.NewTokenManager("test-secret", time.Hour)

	router := mux.NewRouter()
	RegisterRoutes(router, Controllers{
		Users:    controllers.NewUserController(services.NewAuthService(st.Users, tokens, nil)),
		Products: controllers.NewProductController(services.NewCatalogService(st.Products, st.Users)),
		Carts:    controllers.NewCartController(services.NewCartService(st.Carts, st.Products)),
		Orders:   controllers.NewOrderController(services.NewOrderService(st, nil, false)),
	}, tokens)

	return &api{t: t, handler: middleware.Wrap(router, io.Discard, []string{"*"}, 5*time.Second)}
}

func (a *api) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (a *api) register(username string) string {
	a.t.Helper()
	rec, out := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	data := out["data"].(map[string]interface{})
	_, hasPassword := data["password"]
	require.False(a.t, hasPassword)
	return data["token"].(string)
}

func (a *api) listProduct(token, title string, price float64) string {
	a.t.Helper()
	rec, out := a.do(http.MethodPost, "/api/products", token, map[string]interface{}{
		"title":       title,
		"description": "gently used " + title,
		"price":       price,
		"category":    "Sports",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return out["data"].(map[string]interface{})["id"].(string)
}

func TestBannerHealthAndUnknownRoutes(t *testing.T) {
	a := newAPI(t)

	rec, out := a.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0.0", out["version"])

	rec, out = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["success"])

	rec, out = a.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Route not found", out["message"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))

	rec, _ = a.do(http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newAPI(t)

	rec, out := a.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", out["message"])

	rec, out = a.do(http.MethodGet, "/api/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, token failed", out["message"])

	rec, _ = a.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	a := newAPI(t)
	token := a.register("alice")

	rec, out := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", out["message"])

	rec, out = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-one",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", out["message"])

	rec, out = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["data"].(map[string]interface{})["token"])

	rec, out = a.do(http.MethodPut, "/api/auth/profile", token, map[string]string{"phone": "+4400"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+4400", out["data"].(map[string]interface{})["phone"])

	rec, out = a.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", out["data"].(map[string]interface{})["username"])
}

func TestProductEndpoints(t *testing.T) {
	a := newAPI(t)
	seller := a.register("seller")
	other := a.register("other")
	id := a.listProduct(seller, "Skateboard", 45)
	a.listProduct(seller, "Helmet", 15)

	rec, out := a.do(http.MethodGet, "/api/products?sort=price-asc&limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, out["count"])
	assert.EqualValues(t, 2, out["total"])
	assert.EqualValues(t, 2, out["pages"])
	first := out["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Helmet", first["title"])

	rec, out = a.do(http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := out["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["views"])
	assert.Equal(t, "seller", data["seller"].(map[string]interface{})["username"])

	rec, out = a.do(http.MethodGet, "/api/products/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid product ID", out["message"])

	rec, out = a.do(http.MethodPut, "/api/products/"+id, other, map[string]interface{}{"price": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized to update this product", out["message"])

	rec, out = a.do(http.MethodPut, "/api/products/"+id, seller, map[string]interface{}{"price": 40, "status": "sold"})
	require.Equal(t, http.StatusOK, rec.Code)
	data = out["data"].(map[string]interface{})
	assert.EqualValues(t, 40, data["price"])
	assert.Equal(t, "available", data["status"])

	rec, out = a.do(http.MethodPost, "/api/products", seller, map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["message"], "title must be at least 3 characters")

	rec, out = a.do(http.MethodGet, "/api/products/user/mylistings", seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, out["count"])

	rec, out = a.do(http.MethodDelete, "/api/products/"+id, seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", out["message"])

	rec, _ = a.do(http.MethodGet, "/api/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	a := newAPI(t)
	seller := a.register("seller")
	buyer := a.register("buyer")
	board := a.listProduct(seller, "Skateboard", 100)
	helmet := a.listProduct(seller, "Helmet", 50)

	rec, out := a.do(http.MethodPost, "/api/cart/add", buyer, map[string]interface{}{"productId": board})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	items := out["data"].(map[string]interface{})["items"].([]interface{})
	assert.EqualValues(t, 1, items[0].(map[string]interface{})["quantity"])

	rec, _ = a.do(http.MethodPut, "/api/cart/update/"+board, buyer, map[string]interface{}{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.do(http.MethodPost, "/api/cart/add", buyer, map[string]interface{}{"productId": helmet, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = a.do(http.MethodPost, "/api/cart/add", buyer, map[string]interface{}{"productId": helmet, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity must be at least 1", out["message"])

	rec, out = a.do(http.MethodPost, "/api/orders", buyer, map[string]interface{}{"paymentMethod": "Card"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := out["data"].(map[string]interface{})
	assert.EqualValues(t, 250, order["totalAmount"])
	assert.Equal(t, "completed", order["status"])
	assert.Equal(t, "Card", order["paymentMethod"])
	orderID := order["id"].(string)

	rec, out = a.do(http.MethodGet, "/api/cart", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, out["data"].(map[string]interface{})["items"])

	rec, out = a.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, out["total"])
	assert.Equal(t, []interface{}{}, out["data"])

	rec, out = a.do(http.MethodPost, "/api/orders", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", out["message"])

	rec, out = a.do(http.MethodGet, "/api/orders", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, out["count"])

	rec, out = a.do(http.MethodGet, "/api/orders/"+orderID, seller, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized to view this order", out["message"])

	rec, out = a.do(http.MethodPut, "/api/orders/"+orderID+"/cancel", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", out["data"].(map[string]interface{})["status"])

	rec, out = a.do(http.MethodPut, "/api/orders/"+orderID+"/cancel", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order is already cancelled", out["message"])

	rec, out = a.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, out["total"])

	rec, _ = a.do(http.MethodDelete, "/api/cart/clear", buyer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, out = a.do(http.MethodDelete, "/api/cart/remove/"+board, buyer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, out["data"].(map[string]interface{})["items"])
}
