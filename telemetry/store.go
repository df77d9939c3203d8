package telemetry

import "sync"

// Store holds the latest good telemetry sample and notifies subscribers
// when it changes. Staleness is deliberate: a consumer that reads during
// an outage simply sees the last good sample.
type Store struct {
	mu     sync.RWMutex
	latest Sample
	seeded bool
	nextID int
	subs   map[int]func(Sample)
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(Sample))}
}

// Publish replaces the latest sample and notifies subscribers.
func (st *Store) Publish(s Sample) {
	st.mu.Lock()
	st.latest = s
	st.seeded = true
	subs := make([]func(Sample), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	// Notify outside the lock so subscribers can read the store back.
	for _, fn := range subs {
		fn(s)
	}
}

// Latest returns the most recent sample. ok is false until the first
// Publish.
func (st *Store) Latest() (s Sample, ok bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.latest, st.seeded
}

// Subscribe registers a callback for new samples. It returns an
// unsubscribe function; removal is keyed by id, so unsubscribing one
// callback never disturbs the others.
func (st *Store) Subscribe(fn func(Sample)) (unsubscribe func()) {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.nextID
	st.nextID++
	st.subs[id] = fn

	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.subs, id)
	}
}
