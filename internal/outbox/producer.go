package outbox

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaProducer lazily manages one writer per lifecycle-event topic. Both
// session topics are low volume, so writers are created on first use rather
// than up front.
type KafkaProducer struct {
	brokers []string
	log     zerolog.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer.
func NewKafkaProducer(brokers []string, log zerolog.Logger) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		log:     log,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages writes messages to the given topic, creating a writer if
// necessary. Durability over latency: acks from all replicas, synchronous
// writes, so the dispatcher only marks rows published once Kafka has them.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer := p.writerForTopic(topic)
	return writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	p.log.Debug().Str("topic", topic).Msg("creating kafka writer")
	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers, logging per-topic failures and returning the
// first one.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.log.Error().Err(err).Str("topic", topic).Msg("failed to close kafka writer")
			if firstErr == nil {
				firstErr = err
			}
		}
		delete(p.writers, topic)
	}
	return firstErr
}
