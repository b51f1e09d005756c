package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"ecofinds/models"
	"ecofinds/store"
	"ecofinds/utils"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaceOrderInput is the body of a checkout request. Every field is optional.
type PlaceOrderInput struct {
	ShippingAddress *models.Address    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Status          models.OrderStatus `json:"status" validate:"omitempty,oneof=pending completed"`
}

// OrderService turns carts into orders and cancels them.
//
// Checkout and cancellation are sequences of single-document writes with no
// transaction around them. A failure part way through leaves the writes that
// already happened in place.
type OrderService struct {
	orders   store.Orders
	carts    store.Carts
	products store.Products
	users    store.Users
	mailer   Mailer
	hardened bool
}

// NewOrderService builds the order workflow. With hardened set, products are
// claimed with a compare-and-swap before the order is written and a cancel
// only reverts products that are still sold.
func NewOrderService(st store.Store, mailer Mailer, hardened bool) *OrderService {
	return &OrderService{
		orders:   st.Orders,
		carts:    st.Carts,
		products: st.Products,
		users:    st.Users,
		mailer:   mailer,
		hardened: hardened,
	}
}

// PlaceOrder checks out the user's cart.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*models.Order, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("loading user", err)
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, internal("loading cart", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, invalidState("Cart is empty")
	}

	items, err := s.snapshot(ctx, cart)
	if err != nil {
		return nil, err
	}
	if s.hardened {
		if items, err = s.claim(ctx, items); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     orderTotal(items),
		Status:          in.Status,
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		ShippingAddress: user.Address,
	}
	if order.Status == "" {
		order.Status = models.OrderCompleted
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.DefaultPaymentMethod
	}
	if in.ShippingAddress != nil && !in.ShippingAddress.IsZero() {
		order.ShippingAddress = *in.ShippingAddress
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if s.hardened {
			s.release(ctx, items)
		}
		return nil, internal("creating order", err)
	}

	if !s.hardened {
		for _, item := range items {
			err := s.products.SetStatus(ctx, item.ProductID, models.ProductSold)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, internal("marking product sold", err)
			}
		}
	}

	if err := s.carts.SetItems(ctx, cart.ID, []models.CartItem{}); err != nil {
		return nil, internal("clearing cart", err)
	}

	if s.mailer != nil {
		placed := *order
		sendInBackground(ctx, user.Email, func(to string) error {
			return s.mailer.SendOrderConfirmationEmail(to, placed)
		})
	}
	return order, nil
}

// snapshot copies the purchase-time view of every cart line. Any line whose
// product is gone or not available aborts the checkout before anything is
// written.
func (s *OrderService) snapshot(ctx context.Context, cart *models.Cart) ([]models.OrderItem, error) {
	products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, internal("loading cart products", err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, invalidState("Product %s is no longer available", line.ProductID.Hex())
		}
		if p.Status != models.ProductAvailable {
			return nil, invalidState("Product %q is no longer available", p.Title)
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Quantity:  line.Quantity,
			Image:     p.FirstImage(),
		})
	}
	return items, nil
}

// claim marks each product sold only if it is still available. Lines that
// lose the race are dropped from the order rather than failing it.
func (s *OrderService) claim(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	claimed := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		ok, err := s.products.CompareAndSetStatus(ctx, item.ProductID, models.ProductAvailable, models.ProductSold)
		if err != nil {
			s.release(ctx, claimed)
			return nil, internal("claiming product", err)
		}
		if !ok {
			log.Printf("[%s] product %s was claimed by another checkout, dropping it from the order",
				utils.RequestIDFrom(ctx), item.ProductID.Hex())
			continue
		}
		claimed = append(claimed, item)
	}
	if len(claimed) == 0 {
		return nil, invalidState("None of the products in your cart are still available")
	}
	return claimed, nil
}

func (s *OrderService) release(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if _, err := s.products.CompareAndSetStatus(ctx, item.ProductID, models.ProductSold, models.ProductAvailable); err != nil {
			log.Printf("[%s] failed to release product %s: %v", utils.RequestIDFrom(ctx), item.ProductID.Hex(), err)
		}
	}
}

// orderTotal sums price x quantity without float drift.
func orderTotal(items []models.OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.InexactFloat64()
}

// CancelOrder cancels one of the user's orders and puts its products back
// on sale.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.owned(ctx, userID, orderID, "cancel")
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled {
		return nil, invalidState("Order is already cancelled")
	}

	if err := s.orders.SetStatus(ctx, order.ID, models.OrderCancelled); err != nil {
		return nil, internal("cancelling order", err)
	}
	order.Status = models.OrderCancelled

	for _, item := range order.Items {
		if s.hardened {
			if _, err := s.products.CompareAndSetStatus(ctx, item.ProductID, models.ProductSold, models.ProductAvailable); err != nil {
				return nil, internal("restoring product", err)
			}
			continue
		}
		err := s.products.SetStatus(ctx, item.ProductID, models.ProductAvailable)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, internal("restoring product", err)
		}
	}

	if user, err := s.users.FindByID(ctx, userID); err == nil && s.mailer != nil {
		cancelled := *order
		sendInBackground(ctx, user.Email, func(to string) error {
			return s.mailer.SendOrderCancelledEmail(to, cancelled)
		})
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, internal("listing orders", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	return s.owned(ctx, userID, orderID, "view")
}

func (s *OrderService) owned(ctx context.Context, userID, orderID primitive.ObjectID, action string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Order not found")
		}
		return nil, internal("loading order", err)
	}
	if order.UserID != userID {
		return nil, forbidden("Not authorized to %s this order", action)
	}
	return order, nil
}
