package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/pkg/upload"
)

const serviceName = "UploadService"

// logService wraps Service with automatic logging of all method calls.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the upload Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Upload(
	ctx context.Context,
	userID uuid.UUID,
	kind upload.Kind,
	contentType string,
	size int64,
	r io.Reader,
) (result *Result, err error) {
	start := time.Now()

	ls.logger.Info("Upload started",
		zap.String("service", serviceName),
		zap.String("method", "Upload"),
		zap.String("user_id", userID.String()),
		zap.String("kind", string(kind)),
		zap.String("content_type", contentType),
		zap.Int64("size", size),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Upload failed",
				zap.String("service", serviceName),
				zap.String("method", "Upload"),
				zap.String("user_id", userID.String()),
				zap.String("kind", string(kind)),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Upload completed",
				zap.String("service", serviceName),
				zap.String("method", "Upload"),
				zap.String("user_id", userID.String()),
				zap.String("url", result.URL),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Upload(ctx, userID, kind, contentType, size, r)
}
