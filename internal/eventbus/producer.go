// Package eventbus wires the domain's EventPublisher/Consumer ports to
// Kafka via franz-go, and implements the fan-out and user-replica consumer
// groups described by the spec.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig configures a Producer. Brokers and Logger are required.
type ProducerConfig struct {
	Brokers []string
	Logger  zerolog.Logger
	Timeout time.Duration // per-publish deadline; defaults to 5s
}

// Producer publishes JSON envelopes to the event bus with at-least-once
// semantics: idempotence is enabled, retries happen under the hood, and a
// failed publish is logged rather than surfaced — the durable write this
// event describes has already committed by the time Publish is called.
type Producer struct {
	client  *kgo.Client
	logger  zerolog.Logger
	timeout time.Duration
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("eventbus: producer requires at least one broker")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("eventbus: creating producer client: %w", err)
	}

	return &Producer{client: client, logger: cfg.Logger, timeout: timeout}, nil
}

// Publish serializes envelope as JSON and produces it to topic, keyed by
// key (message_id for the CS channel-sharded topics, user_id for IS's
// user-events topic, so per-key ordering is preserved within a partition).
// A produce failure is logged and returns nil: the caller's durable write
// has already succeeded and remains authoritative (spec-accepted "may miss
// live fan-out" trade-off). A serialization failure is logged and returned
// as an error.
func (p *Producer) Publish(ctx context.Context, topic, key string, envelope any) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("serializing event failed")
		return fmt.Errorf("eventbus: serializing event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: body}
	result := p.client.ProduceSync(ctx, record)
	if err := result.FirstErr(); err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Str("key", key).Msg("publish failed, continuing")
		return nil
	}
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
