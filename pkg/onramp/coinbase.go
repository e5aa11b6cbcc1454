package onramp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured indicates required provider configuration is absent.
var ErrNotConfigured = errors.New("onramp provider not configured")

// coinbaseProvider builds hosted checkout URLs for Coinbase Onramp. Each
// redirect carries a short-lived HMAC-signed session token binding the
// destination address and purchase terms, so the hosted page cannot be
// replayed for a different wallet.
type coinbaseProvider struct {
	appID   string
	baseURL string
	secret  []byte
	ttl     time.Duration
}

// NewCoinbaseProvider creates a Coinbase Onramp quote provider.
func NewCoinbaseProvider(appID, baseURL string, sessionSecret []byte, ttl time.Duration) *coinbaseProvider {
	return &coinbaseProvider{
		appID:   appID,
		baseURL: baseURL,
		secret:  sessionSecret,
		ttl:     ttl,
	}
}

func (p *coinbaseProvider) Name() string {
	return "coinbase"
}

func (p *coinbaseProvider) Quote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	if p.appID == "" || len(p.secret) == 0 {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(p.ttl)
	token, err := p.sessionToken(req, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign onramp session: %w", err)
	}

	q := url.Values{}
	q.Set("appId", p.appID)
	q.Set("destinationAddress", req.DestinationAddress)
	q.Set("defaultAsset", req.Asset)
	q.Set("defaultNetwork", req.Network)
	q.Set("presetFiatAmount", req.FiatAmount.String())
	q.Set("fiatCurrency", req.FiatCurrency)
	q.Set("sessionToken", token)

	return &Quote{
		Provider:     p.Name(),
		RedirectURL:  p.baseURL + "?" + q.Encode(),
		Asset:        req.Asset,
		Network:      req.Network,
		FiatAmount:   req.FiatAmount,
		FiatCurrency: req.FiatCurrency,
		ExpiresAt:    expiresAt,
	}, nil
}

func (p *coinbaseProvider) sessionToken(req *QuoteRequest, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":     "yuki",
		"aud":     p.Name(),
		"address": req.DestinationAddress,
		"asset":   req.Asset,
		"network": req.Network,
		"amount":  req.FiatAmount.String(),
		"iat":     jwt.NewNumericDate(time.Now()),
		"exp":     jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

var _ QuoteProvider = (*coinbaseProvider)(nil)
