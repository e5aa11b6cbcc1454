package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/onramp"
	"github.com/yukiapp/yuki-server/pkg/wallet"
)

var (
	ErrInvalidAddress    = errors.New("invalid destination address")
	ErrNonPositiveAmount = errors.New("fiat amount must be positive")
	ErrMissingField      = errors.New("missing required field")
)

// Service defines the interface for onramp quote business logic
type Service interface {
	RequestQuote(ctx context.Context, req *onramp.QuoteRequest) (*onramp.Quote, error)
}

type onrampService struct {
	provider onramp.QuoteProvider
	logger   *zap.Logger
}

// NewService creates a new onramp service
func NewService(provider onramp.QuoteProvider, logger *zap.Logger) Service {
	return &onrampService{
		provider: provider,
		logger:   logger,
	}
}

// RequestQuote validates the purchase request and asks the provider for a
// hosted checkout redirect. Only address format, amount sign and field
// presence are checked server-side; pricing is entirely the provider's.
func (s *onrampService) RequestQuote(ctx context.Context, req *onramp.QuoteRequest) (*onramp.Quote, error) {
	if !wallet.ValidAddress(req.DestinationAddress) {
		return nil, apperrors.ValidationError(ErrInvalidAddress, "invalid destination address")
	}
	if req.Asset == "" || req.Network == "" || req.FiatCurrency == "" {
		return nil, apperrors.ValidationError(ErrMissingField, "asset, network and fiat_currency are required")
	}
	if !req.FiatAmount.GreaterThan(decimal.Zero) {
		return nil, apperrors.ValidationError(ErrNonPositiveAmount, "fiat_amount must be positive")
	}

	normalized := *req
	normalized.DestinationAddress = wallet.NormalizeAddress(req.DestinationAddress)
	normalized.Asset = strings.ToUpper(req.Asset)
	normalized.FiatCurrency = strings.ToUpper(req.FiatCurrency)

	quote, err := s.provider.Quote(ctx, &normalized)
	if err != nil {
		if errors.Is(err, onramp.ErrNotConfigured) {
			return nil, apperrors.UpstreamFailureError(err, "onramp provider not configured")
		}
		return nil, apperrors.UpstreamFailureError(
			fmt.Errorf("provider %s: %w", s.provider.Name(), err), "failed to obtain onramp quote")
	}
	return quote, nil
}
