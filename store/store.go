// Package store declares the persistence ports used by the services. Each
// method is a single document operation; nothing here spans documents.
package store

import (
	"context"
	"errors"

	"ecofinds/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Sort keys accepted by ProductQuery.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortPopular   = "popular"
)

// ProductQuery selects a page of products.
type ProductQuery struct {
	Category string
	Search   string
	Status   models.ProductStatus
	SellerID primitive.ObjectID
	Sort     string
	Skip     int64
	Limit    int64
}

type Users interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

type Products interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Find(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, changes models.ProductChanges) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// IncrementViews adds one to the view counter and returns the updated product.
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.ProductStatus) error
	// CompareAndSetStatus moves the product from one status to another and
	// reports whether the product was in the expected status.
	CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.ProductStatus) (bool, error)
}

type Carts interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	SetItems(ctx context.Context, cartID primitive.ObjectID, items []models.CartItem) error
}

type Orders interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
}

// Store bundles the four collections.
type Store struct {
	Users    Users
	Products Products
	Carts    Carts
	Orders   Orders
}
