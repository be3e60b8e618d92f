package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// OTPIssuedEvent is published for a mail service running out of process.
type OTPIssuedEvent struct {
	EventID  string    `json:"event_id"`
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

type KafkaOptions struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaNotifier writes synchronously with acks from all replicas. SASL
// PLAIN over TLS is used when a username is configured.
func NewKafkaNotifier(opts KafkaOptions) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(opts.Broker),
		Topic:        opts.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if opts.Username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: opts.Username, Password: opts.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return &KafkaNotifier{writer: w, now: time.Now}
}

func (n *KafkaNotifier) Send(ctx context.Context, to, code string) error {
	ev := OTPIssuedEvent{
		EventID:  uuid.NewString(),
		Email:    to,
		Code:     code,
		IssuedAt: n.now().UTC(),
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(to),
		Value: value,
		Time:  ev.IssuedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.EventID)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
