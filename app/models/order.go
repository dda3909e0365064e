package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. DefaultOrderStatus is set at creation; only Status is
// mutated afterwards, by administrative action.
const DefaultOrderStatus = "Not Process"

// OrderStatuses is the full set update-status accepts.
var OrderStatuses = []string{"Not Process", "Processing", "Shipped", "Delivered", "Cancelled"}

// ValidOrderStatus reports membership in OrderStatuses.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentReceipt is the gateway's view of a settled sale, embedded on the
// order. Attached only when the gateway reports success.
type PaymentReceipt struct {
	TransactionID string    `bson:"transactionId" json:"transactionId"`
	Status        string    `bson:"status" json:"status"`
	Type          string    `bson:"type" json:"type"`
	Amount        string    `bson:"amount" json:"amount"`
	Currency      string    `bson:"currency,omitempty" json:"currency,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// Order is a denormalized cart snapshot: product references, the embedded
// receipt, and the buyer. Referential integrity to products is unenforced —
// a deleted product leaves a dangling reference in historical orders.
type Order struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	Payment   PaymentReceipt       `bson:"payment" json:"payment"`
	Buyer     primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Status    string               `bson:"status" json:"status"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// OrderBuyer is the buyer projection included in order expansions.
type OrderBuyer struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// OrderView is an order with products (image bytes excluded) and buyer name
// expanded, mirroring what the order list endpoints return.
type OrderView struct {
	Order
	Products []Product  `json:"products"`
	Buyer    OrderBuyer `json:"buyer"`
}
