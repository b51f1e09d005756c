// Package memstore keeps every collection in process memory. It backs
// `serve --store memory` and the service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ecofinds/models"
	"ecofinds/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns an empty in-memory store.
func New() store.Store {
	return store.Store{
		Users:    NewUserRepository(),
		Products: NewProductRepository(),
		Carts:    NewCartRepository(),
		Orders:   NewOrderRepository(),
	}
}

// now is truncated to milliseconds so values match what a BSON round trip
// would return.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// UserRepository is the in-memory users collection.
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return fmt.Errorf("%w: email or username already registered", store.ErrDuplicate)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	t := now()
	user.CreatedAt, user.UpdatedAt = t, t
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []models.User{}
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *UserRepository) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, other := range r.users {
		if id != user.ID && other.Username == user.Username {
			return fmt.Errorf("%w: username already registered", store.ErrDuplicate)
		}
	}
	existing.Username = user.Username
	existing.Phone = user.Phone
	existing.Address = user.Address
	existing.UpdatedAt = now()
	user.UpdatedAt = existing.UpdatedAt
	r.users[user.ID] = existing
	return nil
}

// ProductRepository is the in-memory products collection.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[primitive.ObjectID]models.Product)}
}

func copyProduct(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Seller = nil
	return p
}

func (r *ProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	t := now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = t
	}
	product.UpdatedAt = t
	r.products[product.ID] = copyProduct(*product)
	return nil
}

func (r *ProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p := copyProduct(product)
	return &p, nil
}

func (r *ProductRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := []models.Product{}
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			products = append(products, copyProduct(product))
		}
	}
	return products, nil
}

func (r *ProductRepository) Find(_ context.Context, q store.ProductQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	matched := []models.Product{}
	for _, product := range r.products {
		if matches(product, q) {
			matched = append(matched, copyProduct(product))
		}
	}
	r.mu.RUnlock()

	sortProducts(matched, q.Sort)

	total := int64(len(matched))
	start := q.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && q.Limit < total-start {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

func matches(p models.Product, q store.ProductQuery) bool {
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if !q.SellerID.IsZero() && p.SellerID != q.SellerID {
		return false
	}
	if q.Search != "" {
		haystack := strings.ToLower(p.Title + " " + p.Description)
		for _, word := range strings.Fields(strings.ToLower(q.Search)) {
			if strings.Contains(haystack, word) {
				return true
			}
		}
		return false
	}
	return true
}

func sortProducts(products []models.Product, key string) {
	var less func(a, b models.Product) bool
	switch key {
	case store.SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case store.SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case store.SortPopular:
		less = func(a, b models.Product) bool { return a.Views > b.Views }
	default:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID.Hex() > b.ID.Hex()
	})
}

func (r *ProductRepository) Update(_ context.Context, id primitive.ObjectID, changes models.ProductChanges) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if changes.Title != nil {
		product.Title = *changes.Title
	}
	if changes.Description != nil {
		product.Description = *changes.Description
	}
	if changes.Price != nil {
		product.Price = *changes.Price
	}
	if changes.Category != nil {
		product.Category = *changes.Category
	}
	if changes.Condition != nil {
		product.Condition = *changes.Condition
	}
	if changes.Images != nil {
		product.Images = append([]string(nil), changes.Images...)
	}
	if changes.Brand != nil {
		product.Brand = *changes.Brand
	}
	product.UpdatedAt = now()
	r.products[id] = product

	p := copyProduct(product)
	return &p, nil
}

func (r *ProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) IncrementViews(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	product.Views++
	r.products[id] = product

	p := copyProduct(product)
	return &p, nil
}

func (r *ProductRepository) SetStatus(_ context.Context, id primitive.ObjectID, status models.ProductStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return store.ErrNotFound
	}
	product.Status = status
	product.UpdatedAt = now()
	r.products[id] = product
	return nil
}

func (r *ProductRepository) CompareAndSetStatus(_ context.Context, id primitive.ObjectID, from, to models.ProductStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.Status != from {
		return false, nil
	}
	product.Status = to
	product.UpdatedAt = now()
	r.products[id] = product
	return true, nil
}

// CartRepository is the in-memory carts collection, keyed by owner.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]models.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[primitive.ObjectID]models.Cart)}
}

func copyItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

func (r *CartRepository) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cart.Items = copyItems(cart.Items)
	return &cart, nil
}

func (r *CartRepository) Create(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[cart.UserID]; ok {
		return fmt.Errorf("%w: cart already exists for user %s", store.ErrDuplicate, cart.UserID.Hex())
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	t := now()
	cart.CreatedAt, cart.UpdatedAt = t, t

	stored := *cart
	stored.Items = copyItems(cart.Items)
	r.carts[cart.UserID] = stored
	return nil
}

func (r *CartRepository) SetItems(_ context.Context, cartID primitive.ObjectID, items []models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, cart := range r.carts {
		if cart.ID == cartID {
			cart.Items = copyItems(items)
			cart.UpdatedAt = now()
			r.carts[userID] = cart
			return nil
		}
	}
	return store.ErrNotFound
}

// OrderRepository is the in-memory orders collection.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]models.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[primitive.ObjectID]models.Order)}
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func (r *OrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	t := now()
	order.CreatedAt, order.UpdatedAt = t, t
	r.orders[order.ID] = copyOrder(*order)
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o := copyOrder(order)
	return &o, nil
}

func (r *OrderRepository) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.mu.RLock()
	orders := []models.Order{}
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, copyOrder(order))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID.Hex() > orders[j].ID.Hex()
	})
	return orders, nil
}

func (r *OrderRepository) SetStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = now()
	r.orders[id] = order
	return nil
}
