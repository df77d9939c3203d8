package assets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/station-tracker/internal/logging"
)

// Progress is an aggregate load-progress snapshot. Percent is 100 when the
// declared set is empty.
type Progress struct {
	Percent   float64
	Completed int
	Total     int
}

// Loader resolves one descriptor into a handle. Loaders for the built-in
// kinds are registered by RegisterBuiltinLoaders; custom kinds can plug in
// their own.
type Loader interface {
	Load(ctx context.Context, d Descriptor) (Handle, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, d Descriptor) (Handle, error)

func (f LoaderFunc) Load(ctx context.Context, d Descriptor) (Handle, error) { return f(ctx, d) }

// MetricsRecorder receives load telemetry. Implemented by
// observability.TrackerCollector; a nil recorder is a no-op.
type MetricsRecorder interface {
	RecordAssetLoad(kind string, success bool, seconds float64)
	SetLoadProgress(percent float64)
}

// session is the mutable aggregate state of one load run. It becomes
// terminal exactly once, when completed == total, and is never resurrected;
// reloading requires a fresh session.
type session struct {
	id        uuid.UUID
	total     int
	completed int
	failed    int
	handles   map[string]Handle
	errs      map[string]error
	done      bool
}

// Coordinator loads a declared set of named, typed assets concurrently,
// tracks aggregate progress, and notifies subscribers on completion and
// per-asset errors. A failing asset never blocks the rest: it is reported
// and counted toward the total like any success.
type Coordinator struct {
	log     logging.Logger
	metrics MetricsRecorder

	// dispatchMu serialises subscriber fan-out so progress observations are
	// monotonically non-decreasing in Completed. State itself is guarded by
	// mu; callbacks run outside mu and may call the coordinator's getters.
	dispatchMu sync.Mutex
	mu         sync.Mutex

	loaders     map[Kind]Loader
	descriptors []Descriptor
	names       map[string]struct{}
	session     *session

	nextSubID    int
	progressSubs map[int]func(Progress)
	completeSubs map[int]func(map[string]Handle)
	errorSubs    map[int]func(error, string)
}

// NewCoordinator constructs an idle coordinator. The metrics recorder may
// be nil.
func NewCoordinator(log logging.Logger, metrics MetricsRecorder) *Coordinator {
	if log == nil {
		log = logging.Noop()
	}
	return &Coordinator{
		log:          log,
		metrics:      metrics,
		loaders:      make(map[Kind]Loader),
		names:        make(map[string]struct{}),
		progressSubs: make(map[int]func(Progress)),
		completeSubs: make(map[int]func(map[string]Handle)),
		errorSubs:    make(map[int]func(error, string)),
	}
}

// RegisterLoader installs the loader used for a kind, replacing any
// previous registration.
func (c *Coordinator) RegisterLoader(kind Kind, loader Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders[kind] = loader
}

// Define declares assets to load. Descriptors are immutable once declared;
// duplicate or empty names are rejected, and the set is frozen while a
// session is running.
func (c *Coordinator) Define(descs ...Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil && !c.session.done {
		return fmt.Errorf("cannot declare assets while a load session is running")
	}
	for _, d := range descs {
		if d.Name == "" {
			return fmt.Errorf("asset descriptor with empty name")
		}
		if _, exists := c.names[d.Name]; exists {
			return fmt.Errorf("asset %q already declared", d.Name)
		}
	}
	for _, d := range descs {
		c.names[d.Name] = struct{}{}
		c.descriptors = append(c.descriptors, d)
	}
	return nil
}

// OnProgress subscribes to per-settlement progress updates and returns an
// unsubscribe function.
func (c *Coordinator) OnProgress(fn func(Progress)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.progressSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.progressSubs, id)
	}
}

// OnComplete subscribes to session completion. The callback fires exactly
// once per session, with the full name→handle mapping.
func (c *Coordinator) OnComplete(fn func(map[string]Handle)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.completeSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.completeSubs, id)
	}
}

// OnError subscribes to per-asset load failures; the callback may fire
// multiple times per session.
func (c *Coordinator) OnError(fn func(err error, assetName string)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.errorSubs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.errorSubs, id)
	}
}

// Start loads every declared asset concurrently and blocks until all of
// them settle, successfully or not. It returns the name→handle mapping of
// the successful loads.
//
// Calling Start while a session is already running is a logged no-op, not
// an error; the duplicate call performs no loads and returns nil. Calling
// it after completion returns the already-resolved mapping. With zero
// declared assets the session completes immediately, signalling 100%
// progress and completion synchronously.
func (c *Coordinator) Start(ctx context.Context) (map[string]Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.session != nil {
		if c.session.done {
			handles := copyHandles(c.session.handles)
			c.mu.Unlock()
			c.log.Warn(ctx, "load session already complete; returning resolved assets")
			return handles, nil
		}
		c.mu.Unlock()
		c.log.Warn(ctx, "load already in progress; ignoring duplicate start")
		return nil, nil
	}

	descs := append([]Descriptor(nil), c.descriptors...)
	s := &session{
		id:      uuid.New(),
		total:   len(descs),
		handles: make(map[string]Handle, len(descs)),
		errs:    make(map[string]error),
	}
	c.session = s
	c.mu.Unlock()

	c.log.Info(ctx, "starting asset load",
		logging.String("session", s.id.String()),
		logging.Int("assets", len(descs)),
	)

	if len(descs) == 0 {
		c.mu.Lock()
		s.done = true
		c.mu.Unlock()
		c.dispatchMu.Lock()
		c.emitProgress(Progress{Percent: 100})
		c.emitComplete(ctx, map[string]Handle{})
		c.dispatchMu.Unlock()
		return map[string]Handle{}, nil
	}

	var wg sync.WaitGroup
	for _, d := range descs {
		wg.Add(1)
		go func(d Descriptor) {
			defer wg.Done()
			started := time.Now()
			h, err := c.loadOne(ctx, d)
			c.settle(ctx, s, d, h, err, time.Since(started))
		}(d)
	}
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		// Disposed while loads were in flight; the handles were released
		// as their settlements were discarded.
		return nil, nil
	}
	return copyHandles(s.handles), nil
}

// loadOne resolves a single descriptor. An unregistered kind and a
// panicking loader both surface as that asset's error; neither touches the
// rest of the session.
func (c *Coordinator) loadOne(ctx context.Context, d Descriptor) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h = nil
			err = fmt.Errorf("loader for asset %q panicked: %v", d.Name, r)
		}
	}()

	c.mu.Lock()
	loader := c.loaders[d.Kind]
	c.mu.Unlock()
	if loader == nil {
		return nil, fmt.Errorf("no loader registered for kind %q", d.Kind)
	}
	return loader.Load(ctx, d)
}

// settle records one asset's outcome on the session it belongs to and
// fans out progress, error, and, on the final settlement, completion
// notifications. If the session was disposed while the load was in
// flight, the outcome is discarded and its handle released.
func (c *Coordinator) settle(ctx context.Context, s *session, d Descriptor, h Handle, loadErr error, elapsed time.Duration) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		if r, ok := h.(Releaser); ok {
			r.Release()
		}
		c.log.Debug(ctx, "discarding settlement for a disposed session",
			logging.String("asset", d.Name),
		)
		return
	}
	s.completed++
	if loadErr != nil {
		s.failed++
		s.errs[d.Name] = loadErr
	} else {
		s.handles[d.Name] = h
	}
	progress := Progress{
		Percent:   float64(s.completed) / float64(s.total) * 100,
		Completed: s.completed,
		Total:     s.total,
	}
	finished := s.completed == s.total
	var handles map[string]Handle
	if finished {
		s.done = true
		handles = copyHandles(s.handles)
	}
	failed := s.failed
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordAssetLoad(d.Kind.String(), loadErr == nil, elapsed.Seconds())
	}

	if loadErr != nil {
		c.log.Warn(ctx, "asset load failed",
			logging.String("asset", d.Name),
			logging.String("kind", d.Kind.String()),
			logging.Err(loadErr),
		)
		for _, fn := range c.errorSnapshot() {
			c.safeInvoke(ctx, "error", func() { fn(loadErr, d.Name) })
		}
	} else {
		c.log.Debug(ctx, "asset loaded",
			logging.String("asset", d.Name),
			logging.String("kind", d.Kind.String()),
			logging.Duration("elapsed", elapsed),
		)
	}

	c.emitProgress(progress)

	if finished {
		c.log.Info(ctx, "asset load complete",
			logging.Int("loaded", len(handles)),
			logging.Int("failed", failed),
		)
		c.emitComplete(ctx, handles)
	}
}

// emitProgress must be called with dispatchMu held.
func (c *Coordinator) emitProgress(p Progress) {
	if c.metrics != nil {
		c.metrics.SetLoadProgress(p.Percent)
	}
	c.mu.Lock()
	subs := make([]func(Progress), 0, len(c.progressSubs))
	for _, fn := range c.progressSubs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn := fn
		c.safeInvoke(context.Background(), "progress", func() { fn(p) })
	}
}

// emitComplete must be called with dispatchMu held.
func (c *Coordinator) emitComplete(ctx context.Context, handles map[string]Handle) {
	c.mu.Lock()
	subs := make([]func(map[string]Handle), 0, len(c.completeSubs))
	for _, fn := range c.completeSubs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn := fn
		c.safeInvoke(ctx, "complete", func() { fn(handles) })
	}
}

func (c *Coordinator) errorSnapshot() []func(error, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs := make([]func(error, string), 0, len(c.errorSubs))
	for _, fn := range c.errorSubs {
		subs = append(subs, fn)
	}
	return subs
}

// safeInvoke shields coordinator state and the remaining subscribers from
// a panicking callback.
func (c *Coordinator) safeInvoke(ctx context.Context, kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(ctx, "subscriber panicked",
				logging.String("subscription", kind),
				logging.Any("panic", r),
			)
		}
	}()
	fn()
}

// Progress returns the current aggregate progress snapshot.
func (c *Coordinator) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Progress{Total: len(c.descriptors)}
	}
	s := c.session
	p := Progress{Completed: s.completed, Total: s.total, Percent: 100}
	if s.total > 0 {
		p.Percent = float64(s.completed) / float64(s.total) * 100
	}
	return p
}

// Complete reports whether the current session is terminal.
func (c *Coordinator) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.done
}

// Errors returns a copy of the per-asset failures of the current session.
func (c *Coordinator) Errors() map[string]error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return map[string]error{}
	}
	out := make(map[string]error, len(c.session.errs))
	for k, v := range c.session.errs {
		out[k] = v
	}
	return out
}

// SessionID returns the current session's identifier, or "" when idle.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.id.String()
}

// Dispose releases every successfully loaded handle that exposes a release
// operation, clears the handle mapping, and drops all subscribers. Loads
// still in flight settle into the void: their handles are released on
// arrival and no notifications fire. The coordinator returns to idle and
// may be reused with a fresh session. Safe to call multiple times.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		for _, h := range c.session.handles {
			if r, ok := h.(Releaser); ok {
				r.Release()
			}
		}
		c.session = nil
	}
	c.progressSubs = make(map[int]func(Progress))
	c.completeSubs = make(map[int]func(map[string]Handle))
	c.errorSubs = make(map[int]func(error, string))
}

func copyHandles(in map[string]Handle) map[string]Handle {
	out := make(map[string]Handle, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
