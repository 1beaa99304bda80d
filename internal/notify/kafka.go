package notify

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/go-faster/errors"

	"github.com/beemanhoney/shop/internal/domain/order"
)

// KafkaDispatcher publishes one JSON message per lifecycle event, keyed by
// order ID so all events for an order land on the same partition in order.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaDispatcher(brokers []string, topic string) (*KafkaDispatcher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return &KafkaDispatcher{producer: producer, topic: topic}, nil
}

func (d *KafkaDispatcher) Dispatch(_ context.Context, ev order.LifecycleEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	_, _, err = d.producer.SendMessage(&sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(ev.OrderID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return errors.Wrapf(err, "publish event for order %s", ev.OrderID)
	}
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.producer.Close()
}
