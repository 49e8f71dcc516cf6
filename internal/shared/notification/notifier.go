package notification

import (
	"context"

	"github.com/artsense/artsense-server/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Notifier sends an outbound message to a recipient. No delivery guarantee is
// required; callers treat Send as fire-and-forget.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogNotifier writes notifications to the application log. Stand-in for a
// real mail provider; the interface is the contract.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(_ context.Context, recipient, subject, body string) error {
	log.Info("outbound notification",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
