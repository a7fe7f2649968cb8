// Package watch implements a single-slot, latest-value-wins publish channel.
// A Publisher holds at most one value, the most recently published; each
// Watcher observes publications, possibly skipping intermediate values when
// it falls behind, but always able to catch up to the latest. The valord
// container publishes its new maximum ("head") here on every insertion that
// raises it.
package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amp-labs/valord/optional"
	"github.com/amp-labs/valord/zero"
	"go.uber.org/atomic"
)

// Publisher is the write side of the channel. Publish never blocks and
// overwrites the previous value; slow watchers lose intermediate values.
// A Publisher is safe for concurrent use by publishers and watchers.
type Publisher[V any] struct {
	mu      sync.Mutex
	latest  optional.Value[V]
	changed chan struct{} // closed and replaced on every publish
	version *atomic.Uint64
	log     *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*publisherConfig)

type publisherConfig struct {
	log *slog.Logger
}

// WithLogger routes the publisher's debug logging to the given logger
// instead of slog.Default().
func WithLogger(log *slog.Logger) PublisherOption {
	return func(cfg *publisherConfig) {
		cfg.log = log
	}
}

// NewPublisher creates a Publisher with no value published yet.
func NewPublisher[V any](opts ...PublisherOption) *Publisher[V] {
	cfg := publisherConfig{}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.log == nil {
		cfg.log = slog.Default()
	}

	return &Publisher[V]{
		changed: make(chan struct{}),
		version: atomic.NewUint64(0),
		log:     cfg.log,
	}
}

// Publish stores value as the latest and wakes every waiting watcher.
func (p *Publisher[V]) Publish(value V) {
	p.mu.Lock()
	p.latest = optional.Some(value)
	version := p.version.Inc()
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()

	p.log.Debug("watch: head changed", "version", version)
}

// Head returns the most recently published value, if any.
func (p *Publisher[V]) Head() (V, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.latest.Get()
}

// Subscribe creates a Watcher positioned at the current version: the next
// Changed call blocks until a publication newer than now.
func (p *Publisher[V]) Subscribe() *Watcher[V] {
	return &Watcher[V]{pub: p, seen: p.version.Load()}
}

// Watcher is the read side of the channel. A Watcher is owned by a single
// consumer; create one per goroutine with Subscribe.
type Watcher[V any] struct {
	pub  *Publisher[V]
	seen uint64
}

// Changed blocks until a value newer than the watcher's last observation is
// published, then returns the latest value. Intermediate publications may be
// skipped. Cancelling ctx detaches the wait and returns ctx.Err(); it has no
// effect on publishers.
func (w *Watcher[V]) Changed(ctx context.Context) (V, error) {
	for {
		w.pub.mu.Lock()

		if version := w.pub.version.Load(); version > w.seen {
			w.seen = version
			value := w.pub.latest.GetOrElse(zero.Value[V]())
			w.pub.mu.Unlock()

			return value, nil
		}

		wait := w.pub.changed
		w.pub.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero.Value[V](), ctx.Err()
		case <-wait:
		}
	}
}

// Head returns the latest published value without consuming it:
// a following Changed call still sees any publication made since the
// watcher's last Changed return.
func (w *Watcher[V]) Head() (V, bool) {
	return w.pub.Head()
}
