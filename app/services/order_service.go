package services

import (
	"context"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"github.com/shashiranjanraj/vastra/pkg/payment"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStore is the slice of the order repository the checkout path needs.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
}

// CartItem is one line of the checkout payload: the product reference and
// the price the storefront displayed for it.
type CartItem struct {
	ID    string          `json:"_id"`
	Price decimal.Decimal `json:"price"`
}

// OrderService owns the one write path that talks to the payment gateway.
type OrderService struct {
	orders  OrderStore
	gateway payment.Gateway
}

func NewOrderService(orders OrderStore, gateway payment.Gateway) *OrderService {
	return &OrderService{orders: orders, gateway: gateway}
}

// Place charges the cart total through the gateway and, only if the charge
// succeeded, persists the order with the receipt embedded. A declined or
// failed charge persists nothing.
func (s *OrderService) Place(ctx context.Context, cart []CartItem, nonce string, buyer primitive.ObjectID) (*models.Order, error) {
	if len(cart) == 0 {
		return nil, apperr.Validation("Cart is empty")
	}
	if nonce == "" {
		return nil, apperr.Validation("Payment nonce is required")
	}

	total := decimal.Zero
	products := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		id, err := primitive.ObjectIDFromHex(item.ID)
		if err != nil {
			return nil, apperr.Validation("Invalid product id in cart")
		}
		products = append(products, id)
		total = total.Add(item.Price)
	}
	if total.IsNegative() {
		return nil, apperr.Validation("Invalid cart total")
	}

	receipt, err := s.gateway.Sale(ctx, total, nonce)
	if err != nil {
		metrics.RecordPayment("failed")
		logger.WithCtx(ctx).Warn("payment declined",
			"buyer", buyer.Hex(),
			"total", total.String(),
			"error", err.Error(),
		)
		return nil, apperr.Internal("Payment failed", err)
	}
	metrics.RecordPayment("succeeded")

	order := &models.Order{
		Products: products,
		Payment:  *receipt,
		Buyer:    buyer,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// The customer has been charged at this point; make the mismatch
		// loud enough to reconcile by transaction id.
		logger.WithCtx(ctx).Error("charge succeeded but order insert failed",
			"buyer", buyer.Hex(),
			"transactionId", receipt.TransactionID,
			"error", err.Error(),
		)
		return nil, apperr.Internal("Error while saving order", err)
	}

	logger.WithCtx(ctx).Info("order placed",
		"order", order.ID.Hex(),
		"buyer", buyer.Hex(),
		"total", total.String(),
		"transactionId", receipt.TransactionID,
	)
	return order, nil
}
