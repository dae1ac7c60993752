package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/events"
)

func unmarshalRecord(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}

// ServerFrameBuilder turns a parsed MessageSent event into the bytes the
// session writer expects on the wire (a new_message server frame).
type ServerFrameBuilder func(evt events.ChatEventMessage) ([]byte, error)

// FanoutConsumerConfig configures the instance-wide consumer that
// subscribes to every shard topic.
type FanoutConsumerConfig struct {
	Brokers       []string
	ConsumerGroup string
	Topics        []string
	Logger        zerolog.Logger
	Broadcast     func(channelID channel.ID, frame []byte)
	ConnCount     func(channelID channel.ID) int
	BuildFrame    ServerFrameBuilder
}

// FanoutConsumer subscribes to every chat.messages.<i> shard with
// auto.offset.reset=latest: new instances never replay history, they only
// see live traffic, matching the "live fan-out only" design in spec §4.3.
type FanoutConsumer struct {
	client     *kgo.Client
	logger     zerolog.Logger
	broadcast  func(channel.ID, []byte)
	connCount  func(channel.ID) int
	buildFrame ServerFrameBuilder
}

func NewFanoutConsumer(cfg FanoutConsumerConfig) (*FanoutConsumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.OnPartitionsAssigned(func(_ context.Context, _ *kgo.Client, assigned map[string][]int32) {
			cfg.Logger.Info().Interface("assigned", assigned).Msg("fanout consumer: partitions assigned")
		}),
		kgo.OnPartitionsRevoked(func(_ context.Context, _ *kgo.Client, revoked map[string][]int32) {
			cfg.Logger.Info().Interface("revoked", revoked).Msg("fanout consumer: partitions revoked")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &FanoutConsumer{
		client:     client,
		logger:     cfg.Logger,
		broadcast:  cfg.Broadcast,
		connCount:  cfg.ConnCount,
		buildFrame: cfg.BuildFrame,
	}, nil
}

// Run polls until ctx is cancelled. A broker error sleeps with a capped
// backoff then continues; a single malformed record is logged and
// skipped — neither ever stops the loop, per spec §4.3's error policy.
func (c *FanoutConsumer) Run(ctx context.Context) {
	backoff := 100 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}

		if errs := fetches.Errors(); len(errs) > 0 {
			for _, e := range errs {
				c.logger.Error().Err(e.Err).Str("topic", e.Topic).Int32("partition", e.Partition).Msg("fanout consumer: broker error")
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = 100 * time.Millisecond

		fetches.EachRecord(func(record *kgo.Record) {
			c.handleRecord(record)
		})
	}
}

func (c *FanoutConsumer) handleRecord(record *kgo.Record) {
	eventType, err := events.PeekEventType(record.Value)
	if err != nil {
		c.logger.Warn().Err(err).Msg("fanout consumer: skipping unparseable record")
		return
	}

	if eventType != events.EventMessageSent {
		c.logger.Debug().Str("event_type", string(eventType)).Msg("fanout consumer: no-op event type, logging only")
		return
	}

	var envelope events.ChatEventMessage
	if err := unmarshalRecord(record.Value, &envelope); err != nil {
		c.logger.Warn().Err(err).Msg("fanout consumer: skipping malformed message_sent")
		return
	}

	channelID, err := channel.ParseID(envelope.ChannelID)
	if err != nil {
		c.logger.Warn().Err(err).Str("channel_id", envelope.ChannelID).Msg("fanout consumer: skipping bad channel id")
		return
	}

	if c.connCount(channelID) == 0 {
		return
	}

	frame, err := c.buildFrame(envelope)
	if err != nil {
		c.logger.Warn().Err(err).Msg("fanout consumer: failed building server frame")
		return
	}
	c.broadcast(channelID, frame)
}

func (c *FanoutConsumer) Close() {
	c.client.Close()
}
