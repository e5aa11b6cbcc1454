package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/pkg/user"
)

const serviceName = "HandleService"

// logService wraps Service with automatic logging of mutating calls.
// Resolution and availability checks stay quiet; they are hot paths.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the handle Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Resolve(ctx context.Context, rawHandle string) (*Resolution, error) {
	return ls.svc.Resolve(ctx, rawHandle)
}

func (ls *logService) CheckAvailability(ctx context.Context, rawHandle string) (*Availability, error) {
	return ls.svc.CheckAvailability(ctx, rawHandle)
}

func (ls *logService) Claim(ctx context.Context, userID uuid.UUID, rawHandle string) (claimed string, err error) {
	start := time.Now()

	ls.logger.Info("Claim started",
		zap.String("service", serviceName),
		zap.String("method", "Claim"),
		zap.String("user_id", userID.String()),
		zap.String("handle", rawHandle),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Claim failed",
				zap.String("service", serviceName),
				zap.String("method", "Claim"),
				zap.String("user_id", userID.String()),
				zap.String("handle", rawHandle),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Claim completed",
				zap.String("service", serviceName),
				zap.String("method", "Claim"),
				zap.String("user_id", userID.String()),
				zap.String("handle", claimed),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Claim(ctx, userID, rawHandle)
}

func (ls *logService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateRequest) (err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Error("UpdateProfile failed",
				zap.String("service", serviceName),
				zap.String("method", "UpdateProfile"),
				zap.String("user_id", userID.String()),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.UpdateProfile(ctx, userID, req)
}
