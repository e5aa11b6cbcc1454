package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const serviceName = "PasskeyService"

// logService wraps Service with automatic logging of all method calls.
// Challenge values, key material and signatures never reach the log output.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the passkey Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) IssueChallenge(ctx context.Context, sessionKey string) (resp *ChallengeResponse, err error) {
	start := time.Now()

	defer func() {
		if err != nil {
			ls.logger.Error("IssueChallenge failed",
				zap.String("service", serviceName),
				zap.String("method", "IssueChallenge"),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	return ls.svc.IssueChallenge(ctx, sessionKey)
}

func (ls *logService) VerifyAssertion(
	ctx context.Context,
	userID uuid.UUID,
	sessionKey string,
	req *VerifyRequest,
) (result *VerifyResult, err error) {
	start := time.Now()

	ls.logger.Info("VerifyAssertion started",
		zap.String("service", serviceName),
		zap.String("method", "VerifyAssertion"),
		zap.String("user_id", userID.String()),
		zap.String("challenge_id", req.ChallengeID.String()),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("VerifyAssertion failed",
				zap.String("service", serviceName),
				zap.String("method", "VerifyAssertion"),
				zap.String("user_id", userID.String()),
				zap.String("challenge_id", req.ChallengeID.String()),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("VerifyAssertion completed",
				zap.String("service", serviceName),
				zap.String("method", "VerifyAssertion"),
				zap.String("user_id", userID.String()),
				zap.Uint32("counter", result.Counter),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.VerifyAssertion(ctx, userID, sessionKey, req)
}
