package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"ecofinds/models"
	"ecofinds/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultPageSize is used when a listing request does not set a limit.
	DefaultPageSize = 50
	// MaxPageSize caps the limit a listing request may ask for.
	MaxPageSize = 100

	maxPage = math.MaxInt32
)

// ProductFilter holds the listing query parameters.
type ProductFilter struct {
	Category string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

// ProductPage is one page of the public catalog.
type ProductPage struct {
	Items []models.Product
	Total int64
	Page  int
	Limit int
	Pages int
}

// ProductInput is the body of a create request.
type ProductInput struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    string   `json:"category" validate:"required,category"`
	Condition   string   `json:"condition" validate:"omitempty,condition"`
	Images      []string `json:"images" validate:"omitempty,dive,required"`
	Brand       string   `json:"brand"`
}

// ProductUpdate is the body of a partial update. Status and seller are not
// updatable.
type ProductUpdate struct {
	Title       *string  `json:"title" validate:"omitempty,min=3"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Condition   *string  `json:"condition" validate:"omitempty,condition"`
	Images      []string `json:"images" validate:"omitempty,dive,required"`
	Brand       *string  `json:"brand"`
}

// CatalogService owns product listings.
type CatalogService struct {
	products store.Products
	users    store.Users
}

func NewCatalogService(products store.Products, users store.Users) *CatalogService {
	return &CatalogService{products: products, users: users}
}

// List returns available products matching f, newest first unless f.Sort
// says otherwise.
func (s *CatalogService) List(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := f.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	category := strings.TrimSpace(f.Category)
	if category == "all" {
		category = ""
	}

	items, total, err := s.products.Find(ctx, store.ProductQuery{
		Category: category,
		Search:   strings.TrimSpace(f.Search),
		Status:   models.ProductAvailable,
		Sort:     f.Sort,
		Skip:     int64(page-1) * int64(limit),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, internal("listing products", err)
	}
	if err := s.attachSellers(ctx, items, false); err != nil {
		return nil, err
	}

	return &ProductPage{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// Get returns a product and counts the read as a view.
func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("loading product", err)
	}
	items := []models.Product{*product}
	if err := s.attachSellers(ctx, items, true); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *CatalogService) Create(ctx context.Context, sellerID primitive.ObjectID, in ProductInput) (*models.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		Images:      in.Images,
		Brand:       strings.TrimSpace(in.Brand),
		Status:      models.ProductAvailable,
		SellerID:    sellerID,
	}
	if product.Condition == "" {
		product.Condition = models.DefaultCondition
	}
	if len(product.Images) == 0 {
		product.Images = []string{models.PlaceholderImage}
	}
	if product.Brand == "" {
		product.Brand = models.DefaultBrand
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, internal("creating product", err)
	}
	return product, nil
}

func (s *CatalogService) Update(ctx context.Context, id, sellerID primitive.ObjectID, in ProductUpdate) (*models.Product, error) {
	if _, err := s.ownedProduct(ctx, id, sellerID, "update"); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		in.Description = &description
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	product, err := s.products.Update(ctx, id, models.ProductChanges{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		Images:      in.Images,
		Brand:       in.Brand,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("updating product", err)
	}
	return product, nil
}

// Delete removes the product document. Carts and orders that reference it
// are left untouched.
func (s *CatalogService) Delete(ctx context.Context, id, sellerID primitive.ObjectID) error {
	if _, err := s.ownedProduct(ctx, id, sellerID, "delete"); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Product not found")
		}
		return internal("deleting product", err)
	}
	return nil
}

// ListBySeller returns every listing of sellerID regardless of status.
func (s *CatalogService) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	items, _, err := s.products.Find(ctx, store.ProductQuery{
		SellerID: sellerID,
		Sort:     store.SortNewest,
	})
	if err != nil {
		return nil, internal("listing seller products", err)
	}
	return items, nil
}

func (s *CatalogService) ownedProduct(ctx context.Context, id, sellerID primitive.ObjectID, action string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("loading product", err)
	}
	if product.SellerID != sellerID {
		return nil, forbidden("Not authorized to %s this product", action)
	}
	return product, nil
}

// attachSellers fills in the seller summary of each product. Products whose
// seller no longer exists keep a nil summary.
func (s *CatalogService) attachSellers(ctx context.Context, products []models.Product, withPhone bool) error {
	if len(products) == 0 {
		return nil
	}
	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if !seen[p.SellerID] {
			seen[p.SellerID] = true
			ids = append(ids, p.SellerID)
		}
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return internal("loading sellers", err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for i := range products {
		u, ok := byID[products[i].SellerID]
		if !ok {
			continue
		}
		summary := &models.SellerSummary{ID: u.ID, Username: u.Username, Email: u.Email}
		if withPhone {
			summary.Phone = u.Phone
		}
		products[i].Seller = summary
	}
	return nil
}
