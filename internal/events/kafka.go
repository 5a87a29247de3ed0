package events

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Kafka publishes events synchronously to a single topic.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafka dials the brokers and returns a publisher.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers list is empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is empty")
	}

	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return NewKafkaWithProducer(producer, cfg.Topic), nil
}

// NewKafkaWithProducer wraps an existing producer.
func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

// Publish implements Publisher.
func (k *Kafka) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	msg := &sarama.ProducerMessage{
		Topic:     k.topic,
		Value:     sarama.ByteEncoder(ev.Bytes()),
		Timestamp: ev.Time,
		Headers: []sarama.RecordHeader{
			{Key: []byte("Event-Type"), Value: []byte(ev.Type)},
		},
	}
	if ev.Key != "" {
		msg.Key = sarama.StringEncoder(ev.Key)
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		return errors.Wrapf(err, "publish %s", ev.Type)
	}
	zctx.From(ctx).Debug("Event published",
		zap.String("type", ev.Type),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close flushes and closes the producer.
func (k *Kafka) Close() error {
	return k.producer.Close()
}
