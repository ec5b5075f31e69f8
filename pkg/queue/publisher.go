// Package queue publishes ledger events to RabbitMQ so that downstream
// consumers (notifications, analytics) can follow the auction flow without
// polling the journal. The Postgres journal stays authoritative; broker
// publishing is best effort.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dutchhouse/auction/pkg/model"
)

const QueueName = "auction.events"

type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher dials the broker and declares the durable events queue.
func NewPublisher(url string) (*Publisher, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("can't dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("can't open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("can't declare queue: %w", err)
	}

	p := &Publisher{conn: conn, ch: ch}

	return p, p.close, nil
}

// Append implements ledger.EventSink, publishing each event as a persistent
// JSON message.
func (p *Publisher) Append(ctx context.Context, events ...model.Event) error {
	for _, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("can't marshal event: %w", err)
		}

		pub := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		}

		if err := p.ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
			return fmt.Errorf("can't publish event: %w", err)
		}
	}

	return nil
}

func (p *Publisher) close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}

	return p.conn.Close()
}
