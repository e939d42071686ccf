// Package rabbitmq publishes audit events to a durable topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	interfaces "github.com/sheikh-saqib/bank-admin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/logger"
)

// channel is the part of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends JSON events to one exchange, using the topic as routing key.
type Publisher struct {
	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     channel
	openChannel func() (channel, error)
	exchange    string
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		openChannel: func() (channel, error) {
			ch, err := conn.Channel()
			if err != nil {
				return nil, err
			}
			return ch, nil
		},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, topic, false, false, msg)
	if err == nil {
		return nil
	}

	// one retry on a fresh channel
	logger.Warn("rabbitmq publish failed; reopening channel", logger.Fields{
		"exchange":   p.exchange,
		"routingKey": topic,
		"error":      err.Error(),
	})
	ch, chErr := p.openChannel()
	if chErr != nil {
		return errors.Join(err, chErr)
	}
	if closeErr := p.channel.Close(); closeErr != nil && !errors.Is(closeErr, amqp091.ErrClosed) {
		logger.Warn("rabbitmq stale channel close failed", logger.Fields{"error": closeErr.Error()})
	}
	p.channel = ch
	return p.channel.PublishWithContext(ctx, p.exchange, topic, false, false, msg)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.channel.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
