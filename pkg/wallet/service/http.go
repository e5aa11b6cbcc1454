package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	apphttp "github.com/yukiapp/yuki-server/pkg/app/http"
	"github.com/yukiapp/yuki-server/pkg/auth"
	"github.com/yukiapp/yuki-server/internal/metrics"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers wallet envelope endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/wallet", apphttp.HandleError(h.get))
	r.Post("/wallet", apphttp.HandleError(h.create))
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.ValidationError(err, "failed to read request")
	}

	var req CreateEnvelopeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.ValidationError(err, "invalid JSON")
	}

	env, err := h.service.CreateEnvelope(r.Context(), userID, &req)
	if err != nil {
		metrics.EnvelopeOps.WithLabelValues("create", "error").Inc()
		return err
	}

	metrics.EnvelopeOps.WithLabelValues("create", "ok").Inc()
	apphttp.WriteJSON(w, http.StatusCreated, env)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	env, err := h.service.GetEnvelope(r.Context(), userID)
	if err != nil {
		metrics.EnvelopeOps.WithLabelValues("get", "error").Inc()
		return err
	}

	metrics.EnvelopeOps.WithLabelValues("get", "ok").Inc()
	apphttp.WriteJSON(w, http.StatusOK, env)
	return nil
}
