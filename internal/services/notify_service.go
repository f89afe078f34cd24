package services

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers verification codes to users. Mail transport lives outside
// this service; the default implementation only logs.
type Notifier interface {
	SendValidCode(ctx context.Context, email, code string) error
}

type logNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendValidCode(ctx context.Context, email, code string) error {
	n.logger.Infow("verification code issued", "email", email, "code", code)
	return nil
}
