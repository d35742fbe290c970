package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/logger"
)

// LoggingNotifier records that a notice was dispatched without any delivery
// transport behind it. It stands in for a mail integration in environments
// that have none. The temporary password itself is never written anywhere.
type LoggingNotifier struct {
	logger *zap.Logger
}

func NewLoggingNotifier(log *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: log}
}

// SendTemporaryPassword logs the dispatch with the recipient masked.
func (n *LoggingNotifier) SendTemporaryPassword(_ context.Context, notice port.TemporaryPasswordNotice) error {
	n.logger.Info("temporary password notice dispatched",
		zap.String("email", logger.MaskEmail(notice.Email)),
		zap.Int("credential_length", len(notice.TemporaryPassword)),
	)
	return nil
}

var _ port.Notifier = (*LoggingNotifier)(nil)
