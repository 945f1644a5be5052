package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

// Pub/Sub message attribute names.
const (
	AttrRunID     = "run_id"
	AttrPipeline  = "pipeline"
	AttrEmittedAt = "emitted_at"
	AttrRecordKey = "record_key"
)

// PubSub publishes every record as one message on a topic.
type PubSub struct {
	topic    *pubsub.Topic
	runID    string
	pipeline crawler.Pipeline
	clock    crawler.Clock
}

// NewPubSub creates a PubSub sink for topic.
func NewPubSub(topic *pubsub.Topic, runID string, pipeline crawler.Pipeline, clock crawler.Clock) (*PubSub, error) {
	if topic == nil {
		return nil, fmt.Errorf("pubsub topic is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	return &PubSub{topic: topic, runID: runID, pipeline: pipeline, clock: clock}, nil
}

// Write marshals the record to JSON and waits for the publish to be acknowledged.
func (p *PubSub) Write(ctx context.Context, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			AttrRunID:     p.runID,
			AttrPipeline:  string(p.pipeline),
			AttrEmittedAt: p.clock.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	if keyed, ok := record.(crawler.Keyed); ok {
		msg.Attributes[AttrRecordKey] = keyed.Key()
	}
	if _, err := p.topic.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close flushes outstanding messages.
func (p *PubSub) Close(context.Context) error {
	p.topic.Stop()
	return nil
}
