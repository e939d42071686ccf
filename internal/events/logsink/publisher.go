// Package logsink is an EventPublisher that writes events to the process log.
// It is the default audit sink when no broker is configured.
package logsink

import (
	"context"

	interfaces "github.com/sheikh-saqib/bank-admin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/logger"
)

type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	logger.Info("AUDIT LOG", logger.Fields{
		"topic": topic,
		"event": event,
	})
	return nil
}

func (p *Publisher) Close() error { return nil }

var _ interfaces.EventPublisher = (*Publisher)(nil)
