package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusStream = "deposits:status"
	DLQStream    = "deposits:dlq"
)

// StreamProducer appends deposit lifecycle events to Redis streams for
// downstream consumers.
type StreamProducer struct {
	client redis.Cmdable
	stream string
}

// NewStreamProducer publishes to stream, or StatusStream when empty.
func NewStreamProducer(client redis.Cmdable, stream string) *StreamProducer {
	if stream == "" {
		stream = StatusStream
	}
	return &StreamProducer{client: client, stream: stream}
}

func (p *StreamProducer) PublishStatusEvent(ctx context.Context, depositID string, eventType string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"deposit_id": depositID,
			"event_type": eventType,
			"payload":    string(payload),
			"timestamp":  time.Now().Unix(),
		},
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish deposit event: %w", err)
	}

	return nil
}

func (p *StreamProducer) PublishToDLQ(ctx context.Context, depositID string, reason string, originalData map[string]any) error {
	payload, err := json.Marshal(originalData)
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: DLQStream,
		Values: map[string]any{
			"deposit_id": depositID,
			"reason":     reason,
			"payload":    string(payload),
			"timestamp":  time.Now().Unix(),
		},
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	return nil
}
