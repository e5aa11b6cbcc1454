package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/pkg/wallet"
)

const serviceName = "WalletService"

// logService wraps Service with automatic logging of all method calls.
// Ciphertext and key material never reach the log output.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the wallet Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) CreateEnvelope(
	ctx context.Context,
	userID uuid.UUID,
	req *CreateEnvelopeRequest,
) (env *wallet.Envelope, err error) {
	start := time.Now()

	ls.logger.Info("CreateEnvelope started",
		zap.String("service", serviceName),
		zap.String("method", "CreateEnvelope"),
		zap.String("user_id", userID.String()),
		zap.String("security_level", req.SecurityLevel),
		zap.Int64("chain_id", req.ChainID),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("CreateEnvelope failed",
				zap.String("service", serviceName),
				zap.String("method", "CreateEnvelope"),
				zap.String("user_id", userID.String()),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("CreateEnvelope completed",
				zap.String("service", serviceName),
				zap.String("method", "CreateEnvelope"),
				zap.String("user_id", userID.String()),
				zap.String("address", env.Address),
				zap.String("security_level", string(env.SecurityLevel)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.CreateEnvelope(ctx, userID, req)
}

func (ls *logService) GetEnvelope(ctx context.Context, userID uuid.UUID) (env *wallet.Envelope, err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Warn("GetEnvelope failed",
				zap.String("service", serviceName),
				zap.String("method", "GetEnvelope"),
				zap.String("user_id", userID.String()),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.GetEnvelope(ctx, userID)
}
