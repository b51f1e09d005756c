package mongostore

import (
	"context"
	"time"

	"ecofinds/models"
	"ecofinds/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CartRepository stores one cart document per user.
type CartRepository struct {
	Collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{Collection: db.Collection(cartsCollection)}
}

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.Collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart); err != nil {
		return nil, translate(err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.CreatedAt, cart.UpdatedAt = now, now
	_, err := r.Collection.InsertOne(ctx, cart)
	return translate(err)
}

func (r *CartRepository) SetItems(ctx context.Context, cartID primitive.ObjectID, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": cartID}, bson.M{
		"$set": bson.M{"items": items, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
