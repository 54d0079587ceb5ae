package publishers

import (
	"context"
	"fmt"

	"github.com/Albertoimpl/animal-rescue/internal/logger"
)

// Publisher delivers one event to a downstream sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Builder creates a Publisher from its config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

// Builders maps a publisher type to its Builder.
type Builders map[string]Builder

// DefaultBuilders knows every sink type this package ships.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:      newHTTPPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
	}
}

// Build creates the publisher for cfg.
func (b Builders) Build(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	build, ok := b[cfg.Type]
	if !ok || build == nil {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return build(ctx, cfg, log)
}

// BuildFanout builds every config and routes each publisher to the event
// kinds it subscribed to. On failure the publishers built so far are closed.
func BuildFanout(ctx context.Context, b Builders, cfgs []PublisherConfig, log logger.Logger) (*Fanout, error) {
	routes := make([]route, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := b.Build(ctx, cfg, log)
		if err != nil {
			_ = (&Fanout{routes: routes}).Close()
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		routes = append(routes, newRoute(pub, cfg.Events))
	}
	return &Fanout{routes: routes}, nil
}
