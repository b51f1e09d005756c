package services

import (
	"math"
	"testing"

	"ecofinds/models"
	"ecofinds/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func price(v float64) *float64 { return &v }

func str(v string) *string { return &v }

func TestCatalogService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Products, f.store.Users)
	seller := f.user(t, "seller")

	p, err := svc.Create(f.ctx, seller.ID, ProductInput{
		Title:       "  Vintage Lamp  ",
		Description: "Brass desk lamp",
		Price:       price(0),
		Category:    "Home & Garden",
	})
	require.NoError(t, err)

	assert.Equal(t, "Vintage Lamp", p.Title)
	assert.Equal(t, models.DefaultCondition, p.Condition)
	assert.Equal(t, models.DefaultBrand, p.Brand)
	assert.Equal(t, []string{models.PlaceholderImage}, p.Images)
	assert.Equal(t, models.ProductAvailable, p.Status)
	assert.Zero(t, p.Views)
	assert.Equal(t, seller.ID, p.SellerID)
	assert.False(t, p.ID.IsZero())
}

func TestCatalogService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Products, f.store.Users)
	seller := f.user(t, "seller")

	tests := []struct {
		name    string
		in      ProductInput
		message string
	}{
		{
			name:    "missing price",
			in:      ProductInput{Title: "Lamp", Description: "d", Category: "Other"},
			message: "price is required",
		},
		{
			name:    "negative price",
			in:      ProductInput{Title: "Lamp", Description: "d", Price: price(-1), Category: "Other"},
			message: "price cannot be negative",
		},
		{
			name:    "short title",
			in:      ProductInput{Title: " ab ", Description: "d", Price: price(1), Category: "Other"},
			message: "title must be at least 3 characters",
		},
		{
			name:    "unknown category",
			in:      ProductInput{Title: "Lamp", Description: "d", Price: price(1), Category: "Weapons"},
			message: "Weapons is not a valid category",
		},
		{
			name:    "unknown condition",
			in:      ProductInput{Title: "Lamp", Description: "d", Price: price(1), Category: "Other", Condition: "Broken"},
			message: "Broken is not a valid condition",
		},
		{
			name:    "blank description",
			in:      ProductInput{Title: "Lamp", Description: "   ", Price: price(1), Category: "Other"},
			message: "description is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(f.ctx, seller.ID, tt.in)
			requireKind(t, err, KindValidation, tt.message)
		})
	}
}

func TestCatalogService_List(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Products, f.store.Users)
	seller := f.user(t, "seller")

	lamp := f.product(t, seller, "lamp", 20)
	f.product(t, seller, "desk", 80)
	chair := f.product(t, seller, "chair", 50)
	sold := f.product(t, seller, "sofa", 300)
	require.NoError(t, f.store.Products.SetStatus(f.ctx, sold.ID, models.ProductSold))
	book := &models.Product{Title: "novel", Description: "paperback", Price: 5, Category: "Books", Status: models.ProductAvailable, SellerID: seller.ID}
	require.NoError(t, f.store.Products.Create(f.ctx, book))

	t.Run("only available, newest first", func(t *testing.T) {
		page, err := svc.List(f.ctx, ProductFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
		require.Len(t, page.Items, 4)
		assert.Equal(t, book.ID, page.Items[0].ID)
		assert.Equal(t, lamp.ID, page.Items[3].ID)
		for _, p := range page.Items {
			assert.Equal(t, models.ProductAvailable, p.Status)
			require.NotNil(t, p.Seller)
			assert.Equal(t, "seller", p.Seller.Username)
			assert.Empty(t, p.Seller.Phone)
		}
	})

	t.Run("category", func(t *testing.T) {
		page, err := svc.List(f.ctx, ProductFilter{Category: "Books"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, book.ID, page.Items[0].ID)

		page, err = svc.List(f.ctx, ProductFilter{Category: "all"})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
	})

	t.Run("search", func(t *testing.T) {
		page, err := svc.List(f.ctx, ProductFilter{Search: "chair"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, chair.ID, page.Items[0].ID)
	})

	t.Run("sort and paginate", func(t *testing.T) {
		page, err := svc.List(f.ctx, ProductFilter{Sort: store.SortPriceAsc, Limit: 3, Page: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
		assert.Equal(t, 2, page.Pages)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.Limit)
		require.Len(t, page.Items, 1)
		assert.Equal(t, 80.0, page.Items[0].Price)
	})

	t.Run("defaults", func(t *testing.T) {
		page, err := svc.List(f.ctx, ProductFilter{Page: -1, Limit: 0})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, DefaultPageSize, page.Limit)
		assert.Equal(t, 1, page.Pages)
	})

	t.Run("out of range page and limit", func(t *testing.T) {
		page, err := svc.List(f.ctx, ProductFilter{Page: math.MaxInt, Limit: 50})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.EqualValues(t, 4, page.Total)
		assert.Equal(t, 1, page.Pages)

		page, err = svc.List(f.ctx, ProductFilter{Page: 1, Limit: math.MaxInt})
		require.NoError(t, err)
		assert.Equal(t, MaxPageSize, page.Limit)
		assert.Equal(t, 1, page.Pages)
		assert.Len(t, page.Items, 4)
	})
}

func TestCatalogService_GetCountsViews(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Products, f.store.Users)
	seller := f.user(t, "seller")
	lamp := f.product(t, seller, "lamp", 20)

	_, err := svc.Get(f.ctx, lamp.ID)
	require.NoError(t, err)
	p, err := svc.Get(f.ctx, lamp.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 2, p.Views)
	require.NotNil(t, p.Seller)
	assert.Equal(t, seller.Phone, p.Seller.Phone)
	assert.Equal(t, seller.Email, p.Seller.Email)

	_, err = svc.Get(f.ctx, primitive.NewObjectID())
	requireKind(t, err, KindNotFound, "Product not found")
}

func TestCatalogService_UpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Products, f.store.Users)
	seller, other := f.user(t, "seller"), f.user(t, "other")
	lamp := f.product(t, seller, "lamp", 20)

	_, err := svc.Update(f.ctx, lamp.ID, other.ID, ProductUpdate{Price: price(1)})
	requireKind(t, err, KindForbidden, "Not authorized to update this product")

	err = svc.Delete(f.ctx, lamp.ID, other.ID)
	requireKind(t, err, KindForbidden, "Not authorized to delete this product")

	_, err = svc.Update(f.ctx, primitive.NewObjectID(), seller.ID, ProductUpdate{})
	requireKind(t, err, KindNotFound, "Product not found")

	_, err = svc.Update(f.ctx, lamp.ID, seller.ID, ProductUpdate{Category: str("Nope")})
	requireKind(t, err, KindValidation, "Nope is not a valid category")

	updated, err := svc.Update(f.ctx, lamp.ID, seller.ID, ProductUpdate{
		Title: str(" Brass lamp "),
		Price: price(25),
	})
	require.NoError(t, err)
	assert.Equal(t, "Brass lamp", updated.Title)
	assert.Equal(t, 25.0, updated.Price)
	assert.Equal(t, lamp.Description, updated.Description)
	assert.Equal(t, models.ProductAvailable, updated.Status)
	assert.Equal(t, seller.ID, updated.SellerID)

	require.NoError(t, svc.Delete(f.ctx, lamp.ID, seller.ID))
	_, err = f.store.Products.FindByID(f.ctx, lamp.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCatalogService_ListBySellerIncludesSold(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Products, f.store.Users)
	seller, other := f.user(t, "seller"), f.user(t, "other")
	lamp := f.product(t, seller, "lamp", 20)
	desk := f.product(t, seller, "desk", 80)
	f.product(t, other, "chair", 50)
	require.NoError(t, f.store.Products.SetStatus(f.ctx, lamp.ID, models.ProductSold))

	items, err := svc.ListBySeller(f.ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, desk.ID, items[0].ID)
	assert.Equal(t, models.ProductSold, items[1].Status)
}
