package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/internal/metrics"
	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	apphttp "github.com/yukiapp/yuki-server/pkg/app/http"
	"github.com/yukiapp/yuki-server/pkg/auth"
	"github.com/yukiapp/yuki-server/pkg/upload"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
	maxBody int64
}

// RegisterRoutes registers the upload endpoint on the given chi router.
// maxBody caps the multipart body independent of per-kind ceilings.
func RegisterRoutes(r chi.Router, service Service, maxBody int64, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
		maxBody: maxBody,
	}

	r.Post("/profile/upload", apphttp.HandleError(h.upload))
}

func (h *HTTP) upload(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnauthenticatedError(nil, "authentication required")
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return apperrors.ValidationError(err, "invalid multipart body")
	}

	kind := upload.Kind(r.FormValue("kind"))
	file, header, err := r.FormFile("file")
	if err != nil {
		return apperrors.ValidationError(err, "file field is required")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	result, err := h.service.Upload(r.Context(), userID, kind, contentType, header.Size, file)
	if err != nil {
		return err
	}

	metrics.UploadBytes.WithLabelValues(string(kind)).Observe(float64(header.Size))
	apphttp.WriteJSON(w, http.StatusCreated, result)
	return nil
}
