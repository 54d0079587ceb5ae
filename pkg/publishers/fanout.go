package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// route pairs a publisher with the event kinds it receives; nil kinds means all.
type route struct {
	pub   Publisher
	kinds map[string]bool
}

func newRoute(pub Publisher, kinds []string) route {
	r := route{pub: pub}
	if len(kinds) > 0 {
		r.kinds = make(map[string]bool, len(kinds))
		for _, k := range kinds {
			r.kinds[k] = true
		}
	}
	return r
}

func (r route) accepts(kind string) bool {
	return r.kinds == nil || r.kinds[kind]
}

// Fanout delivers each event to every publisher subscribed to its kind.
type Fanout struct {
	routes []route
}

// NewFanout subscribes every non-nil publisher to all event kinds.
func NewFanout(pubs ...Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range pubs {
		if p != nil {
			f.routes = append(f.routes, newRoute(p, nil))
		}
	}
	return f
}

// Publish returns how many publishers accepted evt. Every subscribed
// publisher is tried; failures are joined into the returned error.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}

	delivered := 0
	var errs []error
	for _, r := range f.routes {
		if !r.accepts(evt.Kind) {
			continue
		}
		if err := r.pub.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", r.pub.Type(), r.pub.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.routes)
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, r := range f.routes {
		c, ok := r.pub.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", r.pub.Type(), r.pub.ID(), err))
		}
	}
	return errors.Join(errs...)
}
