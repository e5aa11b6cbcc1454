// Package onramp integrates fiat-to-crypto onramp providers.
//
// The server validates the destination address and amount, then asks a
// provider for a hosted checkout redirect. Provider specifics live behind
// the QuoteProvider capability interface.
package onramp

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRequest describes the purchase the client wants a quote for.
type QuoteRequest struct {
	DestinationAddress string          `json:"destination_address"`
	Asset              string          `json:"asset"`
	Network            string          `json:"network"`
	FiatAmount         decimal.Decimal `json:"fiat_amount"`
	FiatCurrency       string          `json:"fiat_currency"`
}

// Quote is a provider's answer: a hosted checkout URL the client redirects
// to, plus echo of the purchase terms.
type Quote struct {
	Provider     string          `json:"provider"`
	RedirectURL  string          `json:"redirect_url"`
	Asset        string          `json:"asset"`
	Network      string          `json:"network"`
	FiatAmount   decimal.Decimal `json:"fiat_amount"`
	FiatCurrency string          `json:"fiat_currency"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// QuoteProvider is the onramp provider capability.
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, req *QuoteRequest) (*Quote, error)
}
