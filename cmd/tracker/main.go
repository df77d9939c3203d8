package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/station-tracker/assets"
	"github.com/signalsfoundry/station-tracker/config"
	"github.com/signalsfoundry/station-tracker/core"
	"github.com/signalsfoundry/station-tracker/frameloop"
	"github.com/signalsfoundry/station-tracker/internal/logging"
	"github.com/signalsfoundry/station-tracker/internal/observability"
	"github.com/signalsfoundry/station-tracker/model"
	"github.com/signalsfoundry/station-tracker/scene"
	"github.com/signalsfoundry/station-tracker/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config overlay")
	manifestPath := flag.String("manifest", "", "path to a JSON asset manifest (overrides config)")
	cameraMode := flag.String("camera", "", "initial camera mode: orbit, follow, or static (overrides config)")
	duration := flag.Duration("duration", 0, "how long to run; 0 runs until interrupted")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error(ctx, "failed to load config", logging.Err(err))
		os.Exit(1)
	}
	if *manifestPath != "" {
		cfg.Assets.Manifest = *manifestPath
	}
	if *cameraMode != "" {
		cfg.Camera.Mode = *cameraMode
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewTrackerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.Metrics.Addr, collector, log)

	app, err := buildApp(cfg, log, collector)
	if err != nil {
		log.Error(ctx, "failed to assemble tracker", logging.Err(err))
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, *duration)
		defer cancel()
	}

	log.Info(ctx, "starting tracker",
		logging.String("telemetry_source", cfg.Telemetry.Source),
		logging.String("camera_mode", cfg.Camera.Mode),
		logging.Duration("poll_interval", cfg.Telemetry.PollInterval.Std()),
	)
	if err := app.Run(runCtx); err != nil {
		log.Error(ctx, "tracker exited", logging.Err(err))
		os.Exit(1)
	}

	diag := app.Diagnostics()
	log.Info(ctx, "tracker stopped",
		logging.String("camera_mode", diag.CameraMode),
		logging.Bool("have_fix", diag.HaveFix),
		logging.Float("last_lat", diag.LastSample.Position.Latitude),
		logging.Float("last_lon", diag.LastSample.Position.Longitude),
		logging.Any("frames", diag.Frames),
	)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// buildApp assembles the coordinator, telemetry pipeline, camera, scene,
// and frame loop from the effective configuration.
func buildApp(cfg config.Config, log logging.Logger, collector *observability.TrackerCollector) (*scene.App, error) {
	coordinator := assets.NewCoordinator(log, collector)
	fetcher := &assets.Fetcher{
		Client:  &http.Client{Transport: collector.InstrumentTransport(nil), Timeout: 30 * time.Second},
		BaseDir: cfg.Assets.BaseDir,
	}
	assets.RegisterBuiltinLoaders(coordinator, fetcher)

	descs, err := declaredAssets(cfg)
	if err != nil {
		return nil, err
	}
	if err := coordinator.Define(descs...); err != nil {
		return nil, fmt.Errorf("declare assets: %w", err)
	}

	source, err := telemetrySource(cfg, collector)
	if err != nil {
		return nil, err
	}
	store := telemetry.NewStore()
	poller := telemetry.NewPoller(source, store, log, collector,
		cfg.Telemetry.PollInterval.Std(), cfg.Telemetry.FetchTimeout.Std())

	mode, err := core.ParseCameraMode(cfg.Camera.Mode)
	if err != nil {
		return nil, err
	}
	camera := core.NewCameraController(
		&core.OrbitStrategy{
			Radius:      cfg.Camera.OrbitRadius,
			Height:      cfg.Camera.OrbitHeight,
			AngularStep: cfg.Camera.OrbitStep,
		},
		&core.FollowStrategy{
			HeightOffset: cfg.Camera.FollowHeight,
			BackOffset:   cfg.Camera.FollowBack,
			Blend:        cfg.Camera.FollowBlend,
		},
		core.Pose{Position: r3.Vec{X: cfg.Camera.OrbitRadius, Y: cfg.Camera.OrbitHeight}},
	)
	camera.SetMode(mode)
	collector.SetCameraMode(mode.String())

	sc := scene.New(log, scene.NewHeadless(), store, camera, collector, scene.Params{
		EarthRadius:  cfg.Scene.EarthRadius,
		MarkerRadius: cfg.Scene.MarkerRadius,
		MarkerColor:  cfg.Scene.MarkerColor,
	})
	loop := frameloop.New(cfg.Frame.Interval.Std())

	return scene.NewApp(log, coordinator, poller, loop, sc), nil
}

// declaredAssets returns the manifest's descriptors when one is
// configured, or the compiled-in declaration set.
func declaredAssets(cfg config.Config) ([]assets.Descriptor, error) {
	if cfg.Assets.Manifest == "" {
		return defaultAssets(), nil
	}
	f, err := os.Open(cfg.Assets.Manifest)
	if err != nil {
		return nil, fmt.Errorf("open asset manifest: %w", err)
	}
	defer f.Close()
	return assets.LoadManifest(f)
}

func defaultAssets() []assets.Descriptor {
	return []assets.Descriptor{
		{Name: scene.AssetEarthDay, Kind: assets.KindTexture, URL: "textures/earth_day.jpg"},
		{Name: scene.AssetStarfield, Kind: assets.KindEnvironmentMap, URL: "env/starfield.hdr", Optional: true},
		{Name: scene.AssetStation, Kind: assets.KindModel, URL: "models/station.glb", Optional: true},
	}
}

func telemetrySource(cfg config.Config, collector *observability.TrackerCollector) (telemetry.Source, error) {
	switch cfg.Telemetry.Source {
	case "sgp4":
		return telemetry.NewSGP4Source(model.Target{
			ID:       "iss",
			Name:     "International Space Station",
			NoradID:  25544,
			TLELine1: cfg.Telemetry.TLELine1,
			TLELine2: cfg.Telemetry.TLELine2,
		})
	default:
		client := &http.Client{Transport: collector.InstrumentTransport(nil)}
		return telemetry.NewHTTPSource(cfg.Telemetry.Endpoint, client), nil
	}
}

func serveMetrics(addr string, collector *observability.TrackerCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
