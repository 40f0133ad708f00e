package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes order events to Kafka. Publishing is best effort:
// a broker failure is logged and never fails the business operation
// that triggered the event.
type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(brokers string, log *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        "order-events",
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 5 * time.Second,
	}
	return &Producer{writer: w, log: log}
}

func (p *Producer) Publish(ctx context.Context, ev OrderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("event marshal", "err", err, "type", ev.Type)
		return
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.OrderID, 10)),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("event publish", "err", err, "type", ev.Type, "order_id", ev.OrderID)
	}
}

func (p *Producer) Close() error { return p.writer.Close() }

// Nop is the publisher used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) {}
