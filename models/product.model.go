package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStatus is the inventory state of a listing.
type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductSold      ProductStatus = "sold"
	ProductReserved  ProductStatus = "reserved"
)

// Categories lists every accepted product category.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Furniture",
	"Books",
	"Sports",
	"Toys",
	"Home & Garden",
	"Automotive",
	"Other",
}

// Conditions lists every accepted product condition.
var Conditions = []string{"New", "Like New", "Good", "Fair", "Poor"}

const (
	DefaultCondition = "Good"
	DefaultBrand     = "Generic"
	PlaceholderImage = "https://via.placeholder.com/400x300?text=Product+Image"
)

// Product represents a second-hand listing
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Condition   string             `bson:"condition" json:"condition"`
	Images      []string           `bson:"images" json:"images"`
	Status      ProductStatus      `bson:"status" json:"status"`
	Views       int64              `bson:"views" json:"views"`
	Brand       string             `bson:"brand" json:"brand"`
	AvgRating   float64            `bson:"avg_rating" json:"avgRating"`
	NumReviews  int                `bson:"num_reviews" json:"numReviews"`
	SellerID    primitive.ObjectID `bson:"seller_id" json:"sellerId"`
	Seller      *SellerSummary     `bson:"-" json:"seller,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FirstImage returns the cover image or an empty string.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductChanges carries the fields of a partial product update. Nil fields
// are left untouched.
type ProductChanges struct {
	Title       *string
	Description *string
	Price       *float64
	Category    *string
	Condition   *string
	Images      []string
	Brand       *string
}
