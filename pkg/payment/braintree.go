// Package payment wraps the Braintree gateway behind the two calls the API
// needs: a client token for the frontend SDK and a one-shot sale submitted
// for immediate settlement.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/braintree-go/braintree-go"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shopspring/decimal"
)

// Gateway is the surface the order service depends on. Tests substitute a
// fake; production uses Braintree.
type Gateway interface {
	// ClientToken returns a token the client SDK exchanges for a payment nonce.
	ClientToken(ctx context.Context) (string, error)
	// Sale submits a one-shot sale for amount, settling immediately.
	// A non-nil receipt is returned only when the gateway accepted the charge.
	Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*models.PaymentReceipt, error)
}

// Braintree is the production Gateway.
type Braintree struct {
	bt *braintree.Braintree
}

// NewBraintree builds a gateway for env ("sandbox" or "production").
func NewBraintree(env, merchantID, publicKey, privateKey string) *Braintree {
	e := braintree.Sandbox
	if env == "production" {
		e = braintree.Production
	}
	return &Braintree{bt: braintree.New(e, merchantID, publicKey, privateKey)}
}

func (g *Braintree) ClientToken(ctx context.Context) (string, error) {
	token, err := g.bt.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("braintree: generate client token: %w", err)
	}
	return token, nil
}

func (g *Braintree) Sale(ctx context.Context, amount decimal.Decimal, nonce string) (*models.PaymentReceipt, error) {
	// Braintree wants a fixed-point amount; shift into cents.
	cents := amount.Shift(2).Round(0).IntPart()

	tx, err := g.bt.Transaction().Create(ctx, &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("braintree: sale: %w", err)
	}

	return receiptFrom(tx), nil
}

func receiptFrom(tx *braintree.Transaction) *models.PaymentReceipt {
	r := &models.PaymentReceipt{
		TransactionID: tx.Id,
		Status:        string(tx.Status),
		Type:          tx.Type,
		CreatedAt:     time.Now().UTC(),
	}
	if tx.Amount != nil {
		if b, err := tx.Amount.MarshalText(); err == nil {
			r.Amount = string(b)
		}
	}
	if tx.CurrencyISOCode != "" {
		r.Currency = tx.CurrencyISOCode
	}
	if tx.CreatedAt != nil {
		r.CreatedAt = *tx.CreatedAt
	}
	return r
}
