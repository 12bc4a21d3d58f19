package noop

import (
	"context"

	"go.uber.org/zap"

	"socialid/internal/logger"
	"socialid/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that only logs the notices.
func NewNoopSender() port.EmailSender {
	return noopSender{}
}

func (noopSender) SendAccountConnected(ctx context.Context, toEmail, toName, providerName string) error {
	logger.From(ctx).Info("[NOOP EMAIL] account connected",
		zap.String("to", toEmail), zap.String("name", toName), zap.String("provider", providerName))
	return nil
}

func (noopSender) SendAccountDisconnected(ctx context.Context, toEmail, toName, providerName string) error {
	logger.From(ctx).Info("[NOOP EMAIL] account disconnected",
		zap.String("to", toEmail), zap.String("name", toName), zap.String("provider", providerName))
	return nil
}
