package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxImageBytes caps the inline product image, enforced before persistence.
const MaxImageBytes = 1_000_000

// Image is the product photo stored inline on the document.
type Image struct {
	Data        []byte `bson:"data" json:"-"`
	ContentType string `bson:"contentType" json:"contentType,omitempty"`
}

// Product is a catalogue item. Read paths project Image out everywhere
// except the dedicated product-image route.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	Image       *Image             `bson:"image,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductWithCategory is a product with its category reference expanded,
// as returned by the single-product, related-product, and fetch-all reads.
// The outer Category field shadows the embedded ObjectID in JSON.
type ProductWithCategory struct {
	Product
	Category *Category `json:"category"`
}
