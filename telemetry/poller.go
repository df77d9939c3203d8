package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/station-tracker/internal/logging"
)

const tracerName = "github.com/signalsfoundry/station-tracker/telemetry"

// MetricsRecorder receives per-cycle fetch telemetry. Implemented by
// observability.TrackerCollector; a nil recorder is a no-op.
type MetricsRecorder interface {
	RecordFetch(result string, seconds float64)
}

// Poller fetches from a Source on a fixed interval and publishes good
// samples to a Store. A failed, timed-out, or invalid fetch logs a warning
// and skips the cycle; the store keeps the last good sample, so consumers
// never see the position blank out.
type Poller struct {
	source  Source
	store   *Store
	log     logging.Logger
	metrics MetricsRecorder

	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// NewPoller wires a source to a store. interval must be positive; timeout
// bounds each fetch and defaults to the interval when zero or larger than
// it.
func NewPoller(source Source, store *Store, log logging.Logger, metrics MetricsRecorder, interval, timeout time.Duration) *Poller {
	if log == nil {
		log = logging.Noop()
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	return &Poller{
		source:   source,
		store:    store,
		log:      log,
		metrics:  metrics,
		interval: interval,
		timeout:  timeout,
	}
}

// Start launches the polling loop, fetching immediately and then on every
// interval tick until Stop is called or ctx is cancelled. Starting an
// already-running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	p.stop = make(chan struct{})
	p.stopped = make(chan struct{})
	stop, stopped := p.stop, p.stopped
	p.mu.Unlock()

	go p.run(ctx, stop, stopped)
}

func (p *Poller) run(ctx context.Context, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetchOnce(ctx, stop)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchOnce(ctx, stop)
		}
	}
}

// fetchOnce runs one poll cycle. Stopping cancels the timer only: a fetch
// already in flight runs to completion against its own deadline and its
// result is discarded.
func (p *Poller) fetchOnce(ctx context.Context, stop <-chan struct{}) {
	tracer := otel.Tracer(tracerName)
	spanCtx, span := tracer.Start(ctx, "telemetry.fetch")
	span.SetAttributes(attribute.String("source", p.source.Name()))
	defer span.End()

	// Detach from loop cancellation so stopping the poller never aborts a
	// request midway; the fetch runs against its own deadline.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(spanCtx), p.timeout)
	defer cancel()

	started := time.Now()
	pos, err := p.source.Fetch(fetchCtx)
	elapsed := time.Since(started)

	if err != nil {
		p.recordFetch("error", elapsed)
		span.SetStatus(codes.Error, err.Error())
		p.log.Warn(ctx, "telemetry fetch failed; keeping last position",
			logging.String("source", p.source.Name()),
			logging.Err(err),
		)
		return
	}
	if verr := pos.Validate(); verr != nil {
		p.recordFetch("invalid", elapsed)
		span.SetStatus(codes.Error, verr.Error())
		p.log.Warn(ctx, "telemetry sample rejected; keeping last position",
			logging.String("source", p.source.Name()),
			logging.Err(verr),
		)
		return
	}

	select {
	case <-stop:
		// Stopped while the fetch was in flight; discard the result.
		return
	default:
	}

	p.recordFetch("ok", elapsed)
	p.store.Publish(Sample{Position: pos, FetchedAt: time.Now()})
	p.log.Debug(ctx, "telemetry sample",
		logging.Float("lat", pos.Latitude),
		logging.Float("lon", pos.Longitude),
		logging.Float("alt_km", pos.AltitudeKm),
	)
}

func (p *Poller) recordFetch(result string, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordFetch(result, elapsed.Seconds())
	}
}

// Stop cancels the interval timer and blocks until the loop exits. An
// in-flight fetch completes against its own deadline; its result is
// discarded. Stopping an idle poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, stopped := p.stop, p.stopped
	p.stop, p.stopped = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}
