package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	LowestPrice       float64            `bson:"lowestPrice" json:"lowestPrice"`
	HighestPrice      float64            `bson:"highestPrice" json:"highestPrice"`
	Type              ProductType        `bson:"type,omitempty" json:"type,omitempty"`
	Image             string             `bson:"image,omitempty" json:"image,omitempty"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	IsSellerAvailable bool               `bson:"isSellerAvailable" json:"isSellerAvailable"`
	PhoneNumber       string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Views             int64              `bson:"views" json:"views"`
	Forwards          int64              `bson:"forwards" json:"forwards"`
	CreatedAt         Timestamp          `bson:"createdAt" json:"createdAt"`
}

// Public returns the copy served to anonymous clients: the seller phone is
// only exposed while the seller is marked available.
func (p Product) Public() Product {
	if !p.IsSellerAvailable {
		p.PhoneNumber = ""
	}
	return p
}

// HasPriceRange reports whether both ends of the price range are set.
func (p Product) HasPriceRange() bool {
	return p.LowestPrice > 0 && p.HighestPrice > 0
}
