package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/pkg/contacts"
)

const serviceName = "ContactService"

// logService wraps Service with automatic logging of mutating calls.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the contact Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Add(ctx context.Context, ownerID uuid.UUID, req *AddRequest) (c *contacts.Contact, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Add failed",
				zap.String("service", serviceName),
				zap.String("method", "Add"),
				zap.String("owner_id", ownerID.String()),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Add completed",
				zap.String("service", serviceName),
				zap.String("method", "Add"),
				zap.String("owner_id", ownerID.String()),
				zap.String("contact_user_id", c.ContactUserID.String()),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Add(ctx, ownerID, req)
}

func (ls *logService) List(ctx context.Context, ownerID uuid.UUID) ([]*contacts.Entry, error) {
	return ls.svc.List(ctx, ownerID)
}

func (ls *logService) Remove(ctx context.Context, ownerID, contactID uuid.UUID) (err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Warn("Remove failed",
				zap.String("service", serviceName),
				zap.String("method", "Remove"),
				zap.String("owner_id", ownerID.String()),
				zap.String("contact_id", contactID.String()),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.Remove(ctx, ownerID, contactID)
}
