package events

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/talkincode/productapi/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher delivers product change events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, evt ProductEvent) error
	Close() error
}

// NopPublisher drops every event; used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ProductEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }

// AmqpPublisher publishes events to a durable topic exchange on RabbitMQ
type AmqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// NewAmqpPublisher dials url and declares the topic exchange
func NewAmqpPublisher(url, exchange string) (*AmqpPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open amqp channel")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	zap.L().Info("amqp publisher ready", zap.String("exchange", exchange))
	return &AmqpPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, evt ProductEvent) (err error) {
	defer func() { metrics.RecordEvent(evt.Type, err) }()

	msg, err := buildPublishing(evt)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, evt.Type, false, false, msg)
	return errors.Wrapf(err, "publish %s", evt.Type)
}

func (p *AmqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		zap.L().Warn("close amqp channel", zap.Error(err))
	}
	return p.conn.Close()
}

func buildPublishing(evt ProductEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, errors.Wrapf(err, "encode %s", evt.Type)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Timestamp:    evt.Time,
		Type:         evt.Type,
		Body:         body,
	}, nil
}
