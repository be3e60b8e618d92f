package notify

import (
	"context"

	"github.com/dmitrijs2005/herbalgarden/internal/logging"
)

// LogNotifier writes the code to the server log instead of delivering it.
// Local development only: anyone who can read the log can reset passwords.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, to, code string) error {
	n.logger.Warn(ctx, "otp issued (log notifier, not delivered)", "email", to, "code", code)
	return nil
}
