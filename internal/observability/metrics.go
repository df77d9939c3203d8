package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TrackerCollector bundles Prometheus metrics for the asset loading and
// telemetry surfaces and provides helpers to wire them into HTTP handlers
// and clients.
type TrackerCollector struct {
	gatherer prometheus.Gatherer

	AssetLoads        *prometheus.CounterVec
	AssetLoadDuration *prometheus.HistogramVec
	LoadProgress      prometheus.Gauge

	TelemetryFetches      *prometheus.CounterVec
	TelemetryFetchSeconds prometheus.Histogram
	TelemetryHTTPRequests *prometheus.CounterVec

	FrameTicks prometheus.Counter
	CameraMode *prometheus.GaugeVec
}

// NewTrackerCollector registers tracker Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil. Registration is idempotent: an already-registered collector is
// reused rather than treated as an error.
func NewTrackerCollector(reg prometheus.Registerer) (*TrackerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	assetLoads, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "asset_loads_total",
		Help: "Total number of settled asset loads, labeled by asset kind and result.",
	}, []string{"kind", "result"}), "asset_loads_total")
	if err != nil {
		return nil, err
	}

	assetDurations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "asset_load_duration_seconds",
		Help:    "Individual asset load latency in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"kind"}), "asset_load_duration_seconds")
	if err != nil {
		return nil, err
	}

	progress, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "asset_load_progress_percent",
		Help: "Aggregate progress of the current load session, 0-100.",
	}), "asset_load_progress_percent")
	if err != nil {
		return nil, err
	}

	fetches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_fetches_total",
		Help: "Total number of telemetry poll cycles, labeled by result (ok, error, invalid).",
	}, []string{"result"}), "telemetry_fetches_total")
	if err != nil {
		return nil, err
	}

	fetchSeconds, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "telemetry_fetch_duration_seconds",
		Help:    "Telemetry fetch latency in seconds.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}), "telemetry_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	httpRequests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_http_client_requests_total",
		Help: "Outbound telemetry HTTP requests, labeled by status code and method.",
	}, []string{"code", "method"}), "telemetry_http_client_requests_total")
	if err != nil {
		return nil, err
	}

	frames, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frame_ticks_total",
		Help: "Cumulative number of rendered frame ticks.",
	}), "frame_ticks_total")
	if err != nil {
		return nil, err
	}

	cameraMode, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "camera_mode_active",
		Help: "1 for the active camera mode, 0 for the others.",
	}, []string{"mode"}), "camera_mode_active")
	if err != nil {
		return nil, err
	}

	return &TrackerCollector{
		gatherer:              gatherer,
		AssetLoads:            assetLoads,
		AssetLoadDuration:     assetDurations,
		LoadProgress:          progress,
		TelemetryFetches:      fetches,
		TelemetryFetchSeconds: fetchSeconds,
		TelemetryHTTPRequests: httpRequests,
		FrameTicks:            frames,
		CameraMode:            cameraMode,
	}, nil
}

// RecordAssetLoad satisfies the assets.MetricsRecorder interface so the
// load coordinator can report settlements directly.
func (c *TrackerCollector) RecordAssetLoad(kind string, success bool, seconds float64) {
	if c == nil {
		return
	}
	result := "ok"
	if !success {
		result = "error"
	}
	if c.AssetLoads != nil {
		c.AssetLoads.WithLabelValues(kind, result).Inc()
	}
	if c.AssetLoadDuration != nil {
		c.AssetLoadDuration.WithLabelValues(kind).Observe(seconds)
	}
}

// SetLoadProgress satisfies the assets.MetricsRecorder interface.
func (c *TrackerCollector) SetLoadProgress(percent float64) {
	if c == nil || c.LoadProgress == nil {
		return
	}
	c.LoadProgress.Set(percent)
}

// RecordFetch satisfies the telemetry.MetricsRecorder interface. Result is
// one of "ok", "error", or "invalid".
func (c *TrackerCollector) RecordFetch(result string, seconds float64) {
	if c == nil {
		return
	}
	if c.TelemetryFetches != nil {
		c.TelemetryFetches.WithLabelValues(result).Inc()
	}
	if c.TelemetryFetchSeconds != nil {
		c.TelemetryFetchSeconds.Observe(seconds)
	}
}

// RecordFrameTick counts one rendered frame.
func (c *TrackerCollector) RecordFrameTick() {
	if c == nil || c.FrameTicks == nil {
		return
	}
	c.FrameTicks.Inc()
}

// SetCameraMode marks the active camera mode gauge.
func (c *TrackerCollector) SetCameraMode(active string) {
	if c == nil || c.CameraMode == nil {
		return
	}
	for _, mode := range []string{"orbit", "follow", "static"} {
		v := 0.0
		if mode == active {
			v = 1.0
		}
		c.CameraMode.WithLabelValues(mode).Set(v)
	}
}

// InstrumentTransport wraps an HTTP round tripper so outbound telemetry
// requests are counted by status code.
func (c *TrackerCollector) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if c == nil || c.TelemetryHTTPRequests == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperCounter(c.TelemetryHTTPRequests, next)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *TrackerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
