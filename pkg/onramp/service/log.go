package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yukiapp/yuki-server/pkg/onramp"
)

const serviceName = "OnrampService"

// logService wraps Service with automatic logging of all method calls.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the onramp Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) RequestQuote(ctx context.Context, req *onramp.QuoteRequest) (quote *onramp.Quote, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("RequestQuote failed",
				zap.String("service", serviceName),
				zap.String("method", "RequestQuote"),
				zap.String("asset", req.Asset),
				zap.String("network", req.Network),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("RequestQuote completed",
				zap.String("service", serviceName),
				zap.String("method", "RequestQuote"),
				zap.String("provider", quote.Provider),
				zap.String("asset", quote.Asset),
				zap.String("amount", quote.FiatAmount.String()),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.RequestQuote(ctx, req)
}
