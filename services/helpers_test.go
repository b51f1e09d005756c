package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"ecofinds/models"
	"ecofinds/store"
	"ecofinds/store/memstore"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sentEmail struct {
	kind  string
	to    string
	order models.Order
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (m *fakeMailer) record(e sentEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(toEmail, _ string) error {
	return m.record(sentEmail{kind: "welcome", to: toEmail})
}

func (m *fakeMailer) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	return m.record(sentEmail{kind: "confirmation", to: toEmail, order: order})
}

func (m *fakeMailer) SendOrderCancelledEmail(toEmail string, order models.Order) error {
	return m.record(sentEmail{kind: "cancelled", to: toEmail, order: order})
}

func (m *fakeMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.sent {
		if e.kind == kind {
			n++
		}
	}
	return n
}

type fakeTokens struct{}

func (fakeTokens) GenerateJWT(userID primitive.ObjectID, _ string) (string, error) {
	return "token-" + userID.Hex(), nil
}

type fixture struct {
	ctx    context.Context
	store  store.Store
	mailer *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		ctx:    context.Background(),
		store:  memstore.New(),
		mailer: &fakeMailer{},
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "x",
		Phone:    "+100000",
		Address:  models.Address{Street: "1 " + name + " St", City: "Springfield", Country: "USA"},
	}
	require.NoError(t, f.store.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) product(t *testing.T, seller *models.User, title string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:       title,
		Description: fmt.Sprintf("A used %s in good shape", title),
		Price:       price,
		Category:    "Electronics",
		Condition:   models.DefaultCondition,
		Images:      []string{"https://img.example/" + title + ".jpg"},
		Status:      models.ProductAvailable,
		Brand:       models.DefaultBrand,
		SellerID:    seller.ID,
	}
	require.NoError(t, f.store.Products.Create(f.ctx, p))
	return p
}

func (f *fixture) status(t *testing.T, id primitive.ObjectID) models.ProductStatus {
	t.Helper()
	p, err := f.store.Products.FindByID(f.ctx, id)
	require.NoError(t, err)
	return p.Status
}

func requireKind(t *testing.T, err error, kind Kind, message string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected kind for %q", err.Error())
	if message != "" {
		require.Equal(t, message, err.Error())
	}
}
