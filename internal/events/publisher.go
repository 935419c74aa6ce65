// AngelaMos | 2026
// publisher.go

package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/igorteleutsa/taskSystem/internal/config"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// AMQPPublisher opens a connection per message. Status changes are rare
// enough that a pooled channel is not worth its reconnect handling.
type AMQPPublisher struct {
	url          string
	dialTimeout  time.Duration
	declareQueue bool
}

func NewAMQPPublisher(cfg config.RabbitMQConfig) *AMQPPublisher {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &AMQPPublisher{
		url:          cfg.URL,
		dialTimeout:  timeout,
		declareQueue: cfg.DeclareQueue,
	}
}

func (p *AMQPPublisher) Publish(
	ctx context.Context,
	routingKey string,
	body []byte,
) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close() //nolint:errcheck // best-effort close after publish

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close() //nolint:errcheck // closed with the connection anyway

	if p.declareQueue {
		if _, err := ch.QueueDeclare(
			routingKey,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", routingKey, err)
		}
	}

	if err := ch.PublishWithContext(ctx, "", routingKey, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish to %s: %w", routingKey, err)
	}

	return nil
}

// Ping dials the broker and hangs up, for readiness checks.
func (p *AMQPPublisher) Ping(ctx context.Context) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p *AMQPPublisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("dial rabbitmq: %w", context.DeadlineExceeded)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	return conn, nil
}
