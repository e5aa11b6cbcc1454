package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/internal/metrics"
	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	apphttp "github.com/yukiapp/yuki-server/pkg/app/http"
	"github.com/yukiapp/yuki-server/pkg/auth"
	"github.com/yukiapp/yuki-server/pkg/user"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers handle and profile endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/profile/{handle}", apphttp.HandleError(h.resolve))
	r.Post("/profile/handle-check", apphttp.HandleError(h.check))
	r.Post("/profile/handle", apphttp.HandleError(h.claim))
	r.Patch("/profile", apphttp.HandleError(h.update))
}

type handleRequest struct {
	Handle string `json:"handle"`
}

type claimResponse struct {
	Handle string `json:"handle"`
}

func (h *HTTP) resolve(w http.ResponseWriter, r *http.Request) error {
	raw := chi.URLParam(r, "handle")

	res, err := h.service.Resolve(r.Context(), raw)
	if err != nil {
		metrics.HandleLookups.WithLabelValues("miss").Inc()
		return err
	}

	if res.RedirectTo != "" {
		metrics.HandleLookups.WithLabelValues("redirect").Inc()
		http.Redirect(w, r, "/profile/"+url.PathEscape(res.RedirectTo), http.StatusMovedPermanently)
		return nil
	}

	metrics.HandleLookups.WithLabelValues("hit").Inc()
	apphttp.WriteJSON(w, http.StatusOK, res.Profile)
	return nil
}

func (h *HTTP) check(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeHandle(r)
	if err != nil {
		return err
	}

	avail, err := h.service.CheckAvailability(r.Context(), req.Handle)
	if err != nil {
		return err
	}

	metrics.HandleChecks.WithLabelValues(avail.Reason).Inc()
	apphttp.WriteJSON(w, http.StatusOK, avail)
	return nil
}

func (h *HTTP) claim(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	req, err := decodeHandle(r)
	if err != nil {
		return err
	}

	claimed, err := h.service.Claim(r.Context(), userID, req.Handle)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, claimResponse{Handle: claimed})
	return nil
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.ValidationError(err, "failed to read request")
	}

	var req user.UpdateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.ValidationError(err, "invalid JSON")
	}

	if err := h.service.UpdateProfile(r.Context(), userID, &req); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func decodeHandle(r *http.Request) (*handleRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return nil, apperrors.ValidationError(err, "failed to read request")
	}

	var req handleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperrors.ValidationError(err, "invalid JSON")
	}
	if req.Handle == "" {
		return nil, apperrors.ValidationError(nil, "handle is required")
	}
	return &req, nil
}
