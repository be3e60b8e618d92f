// Package notify delivers one-time codes to users. Delivery is attempted
// once; a failure is reported to the caller and never retried here.
package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/herbalgarden/internal/logging"
	"github.com/dmitrijs2005/herbalgarden/internal/server/config"
)

// Notifier sends code to the address to.
type Notifier interface {
	Send(ctx context.Context, to, code string) error
}

// New builds the notifier selected by cfg.Notifier. Mail is sent from
// cfg.MailFrom, or from the SMTP account when that is empty.
func New(cfg *config.Config, logger logging.Logger) (Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		from := cfg.MailFrom
		if from == "" {
			from = cfg.SMTPUser
		}
		return NewSMTPNotifier(SMTPOptions{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     from,
			Validity: cfg.OTPValidityDuration,
		})
	case config.NotifierKafka:
		return NewKafkaNotifier(KafkaOptions{
			Broker:   cfg.KafkaBroker,
			Topic:    cfg.KafkaTopic,
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		}), nil
	case config.NotifierLog:
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}
