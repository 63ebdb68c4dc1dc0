package events

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/cloudevents/sdk-go/protocol/kafka_sarama/v2"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/binding"
	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/config"
)

// KafkaWriter sends events as binary-mode cloudevents kafka messages.
type KafkaWriter struct {
	producer sarama.SyncProducer
}

func NewKafkaWriter(cfg *config.Config) (*KafkaWriter, error) {
	kafkaCfg := cfg.Service.Kafka

	saramaCfg := kafkaCfg.SaramaConfig
	if saramaCfg == nil {
		saramaCfg = sarama.NewConfig()
	}
	if kafkaCfg.Version != (sarama.KafkaVersion{}) {
		saramaCfg.Version = kafkaCfg.Version
	}
	if kafkaCfg.ClientID != "" {
		saramaCfg.ClientID = kafkaCfg.ClientID
	}
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(kafkaCfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	zap.S().Named("kafka_writer").Infow("kafka producer ready", "brokers", kafkaCfg.Brokers)
	return &KafkaWriter{producer: producer}, nil
}

func newKafkaWriterFromProducer(p sarama.SyncProducer) *KafkaWriter {
	return &KafkaWriter{producer: p}
}

func (k *KafkaWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	msg := &sarama.ProducerMessage{Topic: topic}
	if err := kafka_sarama.WriteProducerMessage(ctx, binding.ToMessage(&e), msg); err != nil {
		return fmt.Errorf("failed to encode event %s: %w", e.ID(), err)
	}

	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send event %s to %s: %w", e.ID(), topic, err)
	}
	return nil
}

func (k *KafkaWriter) Close(_ context.Context) error {
	return k.producer.Close()
}

// NewWriter returns the kafka writer when brokers are configured and the log writer otherwise.
func NewWriter(cfg *config.Config) (Writer, error) {
	if cfg.Service.Kafka.Enabled() {
		return NewKafkaWriter(cfg)
	}
	return NewLogWriter(), nil
}
