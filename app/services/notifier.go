package services

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type OrderEvent string

const (
	EventOrderCreated   OrderEvent = "order.created"
	EventOrderPaid      OrderEvent = "order.paid"
	EventOrderCancelled OrderEvent = "order.cancelled"
	EventOrderRefunded  OrderEvent = "order.refunded"
	EventOrderShipped   OrderEvent = "order.shipped"
)

// Notifier receives order events after the owning transaction commits.
// Implementations must not block the caller on network I/O.
type Notifier interface {
	Notify(ctx context.Context, event OrderEvent, order *models.Order)
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, OrderEvent, *models.Order) {}

type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event OrderEvent, order *models.Order) {
	for _, n := range m {
		n.Notify(ctx, event, order)
	}
}

type OrderEventMessage struct {
	Event      OrderEvent         `json:"event"`
	OrderID    uint               `json:"order_id"`
	UserID     string             `json:"user_id"`
	Status     models.OrderStatus `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	ItemCount  int                `json:"item_count"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func NewOrderEventMessage(event OrderEvent, order *models.Order, at time.Time) OrderEventMessage {
	return OrderEventMessage{
		Event:      event,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		ItemCount:  order.ItemCount(),
		OccurredAt: at,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes order events keyed by order id. The writer runs in
// async mode so Notify returns immediately.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("ERROR: KafkaNotifier: failed to deliver %d order event(s): %v", len(messages), err)
			}
		},
	}
	return &KafkaNotifier{writer: writer}
}

func (k *KafkaNotifier) Notify(ctx context.Context, event OrderEvent, order *models.Order) {
	msg := NewOrderEventMessage(event, order, time.Now())
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ERROR: KafkaNotifier: failed to encode %s for order %d: %v", event, order.ID, err)
		return
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderKey(order.ID)),
		Value: data,
		Time:  msg.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event)},
		},
	})
	if err != nil {
		log.Printf("ERROR: KafkaNotifier: failed to queue %s for order %d: %v", event, order.ID, err)
	}
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

func orderKey(id uint) string {
	return "order-" + strconv.FormatUint(uint64(id), 10)
}
