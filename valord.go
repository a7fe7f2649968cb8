// Package valord implements a value-ordered map: an in-memory container
// whose entries are addressable by a unique key and, at the same time,
// iterable in ascending or descending order of an order key derived from
// the value (see [github.com/amp-labs/valord/ordby]).
//
// Entries live in stable slots (see [github.com/amp-labs/valord/slots]);
// a sorted secondary index (see [github.com/amp-labs/valord/orderindex])
// maps each order key to the slots holding it. Every mutation updates the
// slot store first and then reconciles the order index; every ordered read
// walks the order index. Mutable access goes through an [Entry] handle that
// detaches its slot from the order index when opened and recomputes the
// order key and reattaches when released, so a value's sort position always
// catches up with its mutation at the end of the handle's scope.
//
// Example:
//
//	type Task struct {
//	    Name     string
//	    Priority int
//	}
//
//	func (t Task) OrdBy() int { return t.Priority }
//
//	m := valord.New[int, string, Task]()
//	m.Insert("deploy", Task{Name: "deploy", Priority: 3})
//	m.Insert("triage", Task{Name: "triage", Priority: 1})
//
//	for key, task := range m.Iter() {
//	    fmt.Println(key, task.Priority) // triage 1, deploy 3
//	}
//
// A Map is single-writer: it is not safe for concurrent use, and at most
// one Entry handle may be open at a time. Operations that would break the
// single-handle discipline panic rather than corrupt the indexes. The only
// concurrency-aware piece is the change notifier returned by Watcher, which
// republishes the current maximum whenever an insertion raises it (see
// [github.com/amp-labs/valord/watch]).
package valord

import (
	"cmp"
	"log/slog"

	"github.com/amp-labs/valord/optional"
	"github.com/amp-labs/valord/orderindex"
	"github.com/amp-labs/valord/ordby"
	"github.com/amp-labs/valord/slots"
	"github.com/amp-labs/valord/watch"
	"github.com/amp-labs/valord/zero"
)

// Pair is a key-value pair as returned by First and Last.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is a value-ordered map with order-key type T, key type K, and value
// type V. The zero Map is not usable; construct with New or NewOrdered.
type Map[T cmp.Ordered, K comparable, V any] struct {
	store *slots.Store[K, V]
	index *orderindex.Index[T]
	proj  func(V) T
	head  *watch.Publisher[V]

	// open is the entry handle currently holding a slot detached from the
	// order index, nil when none is open.
	open *Entry[T, K, V]

	name string
	log  *slog.Logger
}

// Option configures a Map.
type Option func(*config)

type config struct {
	name string
	log  *slog.Logger
}

// WithName labels the map in metrics. Maps sharing a name share metric
// series; the default name is "default".
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithLogger routes the map's debug logging (order-index rebuilds, head
// publications) to the given logger instead of slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(cfg *config) {
		cfg.log = log
	}
}

// New creates an empty Map for value types carrying their own ordering
// projection. The order key of each value is value.OrdBy().
func New[T cmp.Ordered, K comparable, V ordby.OrdBy[T]](opts ...Option) *Map[T, K, V] {
	return newMap[T, K, V](func(value V) T { return value.OrdBy() }, opts...)
}

// NewOrdered creates an empty Map for naturally ordered value types.
// Each value is its own order key.
func NewOrdered[K comparable, V cmp.Ordered](opts ...Option) *Map[V, K, V] {
	return newMap[V, K, V](func(value V) V { return value }, opts...)
}

func newMap[T cmp.Ordered, K comparable, V any](proj func(V) T, opts ...Option) *Map[T, K, V] {
	cfg := config{name: "default"}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.log == nil {
		cfg.log = slog.Default()
	}

	return &Map[T, K, V]{
		store: slots.New[K, V](),
		index: orderindex.New[T](),
		proj:  proj,
		head:  watch.NewPublisher[V](watch.WithLogger(cfg.log)),
		name:  cfg.name,
		log:   cfg.log,
	}
}

// Insert adds or replaces the value stored under key (upsert). A replaced
// value is re-sorted under its new order key. If the insertion makes the
// new value's order key strictly greater than the map's previous maximum,
// the new value is published to watchers.
func (m *Map[T, K, V]) Insert(key K, value V) {
	m.ensureClosed("Insert")

	ord := m.proj(value)
	prevMax := m.currentMax()

	// Evict the old bucket membership before the in-place overwrite.
	if index, ok := m.store.IndexOf(key); ok {
		m.index.Remove(m.proj(*m.store.ValueAt(index)), index)
	}

	index, _ := m.store.Upsert(key, value)
	m.index.Insert(ord, index)

	insertsTotal.WithLabelValues(m.name).Inc()
	sizeGauge.WithLabelValues(m.name).Set(float64(m.store.Len()))

	m.publishIfRisen(prevMax, ord, value)
}

// Get returns the value stored under key.
func (m *Map[T, K, V]) Get(key K) (V, bool) {
	return m.store.Get(key)
}

// Contains reports whether key is present.
func (m *Map[T, K, V]) Contains(key K) bool {
	_, ok := m.store.IndexOf(key)

	return ok
}

// Remove removes the value stored under key and returns it.
func (m *Map[T, K, V]) Remove(key K) (V, bool) {
	_, value, ok := m.removeEntry(key, "Remove")

	return value, ok
}

// RemoveEntry removes the pair stored under key and returns both halves.
func (m *Map[T, K, V]) RemoveEntry(key K) (K, V, bool) {
	return m.removeEntry(key, "RemoveEntry")
}

func (m *Map[T, K, V]) removeEntry(key K, op string) (K, V, bool) {
	m.ensureClosed(op)

	index, ok := m.store.IndexOf(key)
	if !ok {
		return zero.Value[K](), zero.Value[V](), false
	}

	m.index.Remove(m.proj(*m.store.ValueAt(index)), index)

	removedKey, removedValue, _ := m.store.Take(key)

	removalsTotal.WithLabelValues(m.name).Inc()
	sizeGauge.WithLabelValues(m.name).Set(float64(m.store.Len()))

	return removedKey, removedValue, true
}

// Modify applies fn to the value stored under key, re-sorting it under the
// recomputed order key, and reports whether the key was found. It is the
// handle-free convenience over GetMut followed by Release.
func (m *Map[T, K, V]) Modify(key K, fn func(value *V)) bool {
	entry, ok := m.GetMut(key)
	if !ok {
		return false
	}

	entry.Update(fn)
	entry.Release()

	return true
}

// Len returns the number of keys in the map.
func (m *Map[T, K, V]) Len() int {
	return m.store.Len()
}

// IsEmpty reports whether the map holds no keys.
func (m *Map[T, K, V]) IsEmpty() bool {
	return m.store.Len() == 0
}

// Keys returns every key in ascending order-key order.
func (m *Map[T, K, V]) Keys() []K {
	m.ensureClosed("Keys")

	keys := make([]K, 0, m.store.Len())

	for key := range m.Iter() {
		keys = append(keys, key)
	}

	return keys
}

// Clear removes every entry. Slot identities are forgotten along with the
// entries; the map behaves as freshly constructed.
func (m *Map[T, K, V]) Clear() {
	m.ensureClosed("Clear")

	m.store.Clear()
	m.index.Clear()

	sizeGauge.WithLabelValues(m.name).Set(0)
}

// Watcher subscribes to head changes: each insertion that raises the map's
// maximum order key publishes the new maximum value. Watchers may miss
// intermediate maxima but always observe the latest.
func (m *Map[T, K, V]) Watcher() *watch.Watcher[V] {
	return m.head.Subscribe()
}

// currentMax snapshots the maximum order key as the index stands right now.
// Publish decisions compare against this snapshot taken before the mutation.
func (m *Map[T, K, V]) currentMax() optional.Value[T] {
	if key, ok := m.index.MaxKey(); ok {
		return optional.Some(key)
	}

	return optional.None[T]()
}

func (m *Map[T, K, V]) publishIfRisen(prevMax optional.Value[T], ord T, value V) {
	if prevKey, ok := prevMax.Get(); ok && ord <= prevKey {
		return
	}

	m.head.Publish(value)
	headPublishesTotal.WithLabelValues(m.name).Inc()
}

// ensureClosed panics if an entry handle is open. Mutating or ordered-read
// access through any other path while a handle is open would observe or
// corrupt a detached slot.
func (m *Map[T, K, V]) ensureClosed(op string) {
	if m.open != nil {
		panic("valord: " + op + " while an entry is open")
	}
}
