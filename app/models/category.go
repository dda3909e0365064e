package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category groups products. Slug is derived from Name at write time and is
// the URL-stable lookup key.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name string             `bson:"name" json:"name"`
	Slug string             `bson:"slug" json:"slug"`
}
