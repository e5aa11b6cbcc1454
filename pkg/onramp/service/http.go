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
	"github.com/yukiapp/yuki-server/pkg/onramp"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers onramp endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/onramp/quote", apphttp.HandleError(h.quote))
}

func (h *HTTP) quote(w http.ResponseWriter, r *http.Request) error {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return apperrors.ValidationError(err, "failed to read request")
	}

	var req onramp.QuoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.ValidationError(err, "invalid JSON")
	}

	quote, err := h.service.RequestQuote(r.Context(), &req)
	if err != nil {
		metrics.OnrampQuotes.WithLabelValues("error").Inc()
		return err
	}

	metrics.OnrampQuotes.WithLabelValues("ok").Inc()
	apphttp.WriteJSON(w, http.StatusOK, quote)
	return nil
}
