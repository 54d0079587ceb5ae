package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/Albertoimpl/animal-rescue/internal/logger"
)

// pubsubPublisher publishes events to a Pub/Sub topic and waits for the ack.
type pubsubPublisher struct {
	id      string
	ordered bool
	client  *pubsub.Client
	topic   *pubsub.Topic
	log     logger.Logger
}

func newGCPPubSubPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	g := cfg.GCPPubSub
	if g == nil {
		return nil, fmt.Errorf("publisher %q missing gcp_pubsub configuration", cfg.ID)
	}

	var opts []option.ClientOption
	if g.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(g.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, g.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client for %s: %w", g.ProjectID, err)
	}

	topic := client.Topic(g.Topic)
	topic.EnableMessageOrdering = g.Ordered

	return &pubsubPublisher{
		id:      cfg.ID,
		ordered: g.Ordered,
		client:  client,
		topic:   topic,
		log:     log,
	}, nil
}

func (p *pubsubPublisher) ID() string   { return p.id }
func (p *pubsubPublisher) Type() string { return TypeGCPPubSub }

func (p *pubsubPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", evt.ID(), err)
	}

	msg := &pubsub.Message{Data: data, Attributes: evt.attributes()}
	if p.ordered {
		msg.OrderingKey = evt.ShelterID
	}

	serverID, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		if p.ordered {
			// a failed ordered publish pauses the key until resumed
			p.topic.ResumePublish(evt.ShelterID)
		}
		p.log.ErrorObj("pubsub publish failed", "publisher_error", map[string]any{
			"publisher_id": p.id,
			"event_id":     evt.ID(),
			"error":        err.Error(),
		})
		return fmt.Errorf("pubsub publish: %w", err)
	}
	p.log.DebugObj("pubsub message published", "publisher_delivery", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID(),
		"message_id":   serverID,
	})
	return nil
}

// Close flushes pending messages and releases the client.
func (p *pubsubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
