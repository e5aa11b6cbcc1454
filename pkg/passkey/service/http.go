package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/internal/metrics"
	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	apphttp "github.com/yukiapp/yuki-server/pkg/app/http"
	"github.com/yukiapp/yuki-server/pkg/auth"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers passkey endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/passkey/challenge", apphttp.HandleError(h.challenge))
	r.Post("/passkey/authenticate/verify", apphttp.HandleError(h.verify))
}

func (h *HTTP) challenge(w http.ResponseWriter, r *http.Request) error {
	sessionKey, ok := auth.SessionKeyFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	resp, err := h.service.IssueChallenge(r.Context(), sessionKey)
	if err != nil {
		return err
	}

	metrics.PasskeyChallenges.Inc()
	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) verify(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}
	sessionKey, ok := auth.SessionKeyFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.ValidationError(err, "failed to read request")
	}

	var req VerifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.ValidationError(err, "invalid JSON")
	}

	result, err := h.service.VerifyAssertion(r.Context(), userID, sessionKey, &req)
	if err != nil {
		metrics.PasskeyVerifications.WithLabelValues("error").Inc()
		return err
	}

	metrics.PasskeyVerifications.WithLabelValues("ok").Inc()
	apphttp.WriteJSON(w, http.StatusOK, result)
	return nil
}
