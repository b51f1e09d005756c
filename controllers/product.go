package controllers

import (
	"net/http"
	"strconv"

	"ecofinds/models"
	"ecofinds/services"
	"ecofinds/utils"
)

// ProductController serves the public catalog and seller listings.
type ProductController struct {
	catalog *services.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// GetProducts lists available products
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := pc.catalog.List(r.Context(), services.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := result.Items
	if items == nil {
		items = []models.Product{}
	}
	utils.WriteJSON(w, http.StatusOK, envelope{
		"success": true,
		"count":   len(items),
		"total":   result.Total,
		"page":    result.Page,
		"pages":   result.Pages,
		"data":    items,
	})
}

// GetProductByID returns one product and counts the view
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := pc.catalog.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, product)
}

// CreateProduct lists a new product for the caller
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in services.ProductInput
	if err := decodeBody(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	product, err := pc.catalog.Create(r.Context(), userID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, product)
}

// UpdateProduct edits a product owned by the caller
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var in services.ProductUpdate
	if err := decodeBody(r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	product, err := pc.catalog.Update(r.Context(), id, userID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, product)
}

// DeleteProduct removes a product owned by the caller
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := pc.catalog.Delete(r.Context(), id, userID); err != nil {
		respondError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, envelope{"success": true, "message": "Product deleted successfully"})
}

// GetMyListings returns every product the caller listed, sold ones included
func (pc *ProductController) GetMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	products, err := pc.catalog.ListBySeller(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respondList(w, products, len(products))
}
