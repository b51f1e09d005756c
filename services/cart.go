package services

import (
	"context"
	"errors"
	"fmt"

	"ecofinds/models"
	"ecofinds/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 999

func quantityTooLarge() *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf("quantity must be at most %d", MaxQuantity)}
}

// CartService manages the caller's own cart. There is no cross-user access.
type CartService struct {
	carts    store.Carts
	products store.Products
}

func NewCartService(carts store.Carts, products store.Products) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
func (s *CartService) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// AddItem puts quantity units of productID into the cart, merging with an
// existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, &Error{Kind: KindValidation, Message: "quantity must be at least 1"}
	}
	if quantity > MaxQuantity {
		return nil, quantityTooLarge()
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("loading product", err)
	}
	if product.Status != models.ProductAvailable {
		return nil, invalidState("Product is not available")
	}

	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.IndexOf(productID); i >= 0 {
		if cart.Items[i].Quantity > MaxQuantity-quantity {
			return nil, quantityTooLarge()
		}
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.carts.SetItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, internal("saving cart", err)
	}
	return s.populate(ctx, cart)
}

// UpdateItem sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity > MaxQuantity {
		return nil, quantityTooLarge()
	}
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.IndexOf(productID)
	if i < 0 {
		return nil, notFound("Item not found in cart")
	}
	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}

	if err := s.carts.SetItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, internal("saving cart", err)
	}
	return s.populate(ctx, cart)
}

// RemoveItem drops productID from the cart. Removing a product that is not
// in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := make([]models.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if err := s.carts.SetItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, internal("saving cart", err)
	}
	return s.populate(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	if err := s.carts.SetItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, internal("clearing cart", err)
	}
	return cart, nil
}

func (s *CartService) existing(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Cart not found")
		}
		return nil, internal("loading cart", err)
	}
	return cart, nil
}

func (s *CartService) loadOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, internal("loading cart", err)
	}

	cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	if err := s.carts.Create(ctx, cart); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, internal("creating cart", err)
		}
		// Lost a concurrent first-access race; the other request's cart wins.
		cart, err = s.carts.FindByUser(ctx, userID)
		if err != nil {
			return nil, internal("loading cart", err)
		}
	}
	return cart, nil
}

// populate attaches a product summary to every cart line. Lines whose
// product has been deleted keep a nil summary.
func (s *CartService) populate(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if len(cart.Items) == 0 {
		return cart, nil
	}
	products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, internal("loading cart products", err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range cart.Items {
		p, ok := byID[cart.Items[i].ProductID]
		if !ok {
			continue
		}
		cart.Items[i].Product = &models.ProductSummary{
			ID:       p.ID,
			Title:    p.Title,
			Price:    p.Price,
			Images:   p.Images,
			Category: p.Category,
			Status:   p.Status,
		}
	}
	return cart, nil
}
