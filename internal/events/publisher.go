package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/qudurat/qudurat/internal/quiz"
)

const publishTimeout = 2 * time.Second

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends events to the topic exchange. A Publisher built from an
// empty URL is disabled and drops everything.
type Publisher struct {
	conn    *amqp.Connection
	channel Channel
	enabled bool
	now     func() time.Time
	logger  *slog.Logger
}

var _ quiz.Observer = (*Publisher)(nil)

// Dial connects to url and declares the exchange. An empty url returns a
// disabled Publisher.
func Dial(url string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if url == "" {
		logger.Info("AMQP URL is empty, event publishing is disabled")
		return &Publisher{logger: logger, now: time.Now}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("event publisher ready", "exchange", Exchange)
	p := NewPublisher(ch, logger)
	p.conn = conn
	return p, nil
}

// NewPublisher publishes over an already open channel.
func NewPublisher(ch Channel, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{channel: ch, enabled: true, now: time.Now, logger: logger}
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool { return p.enabled }

// Publish sends one event, routed by its type.
func (p *Publisher) Publish(ctx context.Context, e Event) error {
	if !p.enabled {
		return nil
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		Exchange,       // exchange
		string(e.Type), // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Timestamp:    e.OccurredAt,
			Body:         body,
			Headers: amqp.Table{
				"event_type": string(e.Type),
				"session_id": e.SessionID,
				"user_id":    e.UserID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// send publishes in the background of a quiz call. Failures are logged
// and never reach the session.
func (p *Publisher) send(ctx context.Context, e Event) {
	if !p.enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, e); err != nil {
		p.logger.Warn("event not published", "event_type", e.Type, "session_id", e.SessionID, "user_id", e.UserID, "error", err)
	}
}

func (p *Publisher) SessionStarted(ctx context.Context, s *quiz.Session) {
	p.send(ctx, newEvent(SessionStarted, s, p.now()))
}

func (p *Publisher) AnswerSubmitted(context.Context, *quiz.Session, quiz.Outcome) {}

func (p *Publisher) SessionFinalized(ctx context.Context, s *quiz.Session, r quiz.Report) {
	p.send(ctx, Finalized(s, r))
}

func (p *Publisher) SessionCancelled(ctx context.Context, s *quiz.Session) {
	p.send(ctx, newEvent(SessionCancelled, s, p.now()))
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("closing AMQP channel", "error", err)
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close RabbitMQ connection: %w", err)
		}
	}
	return nil
}
