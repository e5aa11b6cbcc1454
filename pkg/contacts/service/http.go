package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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

// RegisterRoutes registers contact endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/contacts", apphttp.HandleError(h.list))
	r.Post("/contacts", apphttp.HandleError(h.add))
	r.Delete("/contacts/{id}", apphttp.HandleError(h.remove))
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	entries, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		metrics.ContactOps.WithLabelValues("list", "error").Inc()
		return err
	}

	metrics.ContactOps.WithLabelValues("list", "ok").Inc()
	apphttp.WriteJSON(w, http.StatusOK, entries)
	return nil
}

func (h *HTTP) add(w http.ResponseWriter, r *http.Request) error {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return apperrors.ValidationError(err, "failed to read request")
	}

	var req AddRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.ValidationError(err, "invalid JSON")
	}

	c, err := h.service.Add(r.Context(), ownerID, &req)
	if err != nil {
		metrics.ContactOps.WithLabelValues("add", "error").Inc()
		return err
	}

	metrics.ContactOps.WithLabelValues("add", "ok").Inc()
	apphttp.WriteJSON(w, http.StatusCreated, c)
	return nil
}

func (h *HTTP) remove(w http.ResponseWriter, r *http.Request) error {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return apperrors.ValidationError(err, "invalid contact id")
	}

	if err := h.service.Remove(r.Context(), ownerID, contactID); err != nil {
		metrics.ContactOps.WithLabelValues("remove", "error").Inc()
		return err
	}

	metrics.ContactOps.WithLabelValues("remove", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
	return nil
}
