package scene

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/station-tracker/assets"
	"github.com/signalsfoundry/station-tracker/core"
	"github.com/signalsfoundry/station-tracker/frameloop"
	"github.com/signalsfoundry/station-tracker/internal/logging"
	"github.com/signalsfoundry/station-tracker/model"
	"github.com/signalsfoundry/station-tracker/telemetry"
)

type fixedSource struct{ pos model.GeoPosition }

func (s *fixedSource) Name() string { return "fixed" }
func (s *fixedSource) Fetch(ctx context.Context) (model.GeoPosition, error) {
	return s.pos, nil
}

// End-to-end through the headless backend: declare assets, load, build,
// poll, tick, then read the diagnostics snapshot.
func TestAppRunAndDiagnostics(t *testing.T) {
	log := logging.Noop()

	coordinator := assets.NewCoordinator(log, nil)
	coordinator.RegisterLoader(assets.KindTexture, assets.LoaderFunc(
		func(ctx context.Context, d assets.Descriptor) (assets.Handle, error) {
			return assets.NewTexture(d.Name, []byte("tex"), "srgb"), nil
		}))
	if err := coordinator.Define(
		assets.Descriptor{Name: AssetEarthDay, Kind: assets.KindTexture, URL: "earth.jpg"},
	); err != nil {
		t.Fatalf("Define: %v", err)
	}

	store := telemetry.NewStore()
	src := &fixedSource{pos: model.GeoPosition{Latitude: 10, Longitude: 20, AltitudeKm: 420, VelocityKmh: 27500}}
	poller := telemetry.NewPoller(src, store, log, nil, 5*time.Millisecond, 0)

	backend := NewHeadless()
	sc := newTestScene(t, backend, store)
	loop := frameloop.New(5 * time.Millisecond)
	app := NewApp(log, coordinator, poller, loop, sc)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- app.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		if backend.Renders() >= 3 {
			if _, ok := sc.LastFix(); ok {
				break
			}
		}
		select {
		case <-deadline:
			t.Fatalf("timed out: renders=%d", backend.Renders())
		case err := <-runErr:
			t.Fatalf("Run exited early: %v", err)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not exit on cancellation")
	}

	diag := app.Diagnostics()
	if diag.CameraMode != "orbit" {
		t.Errorf("camera mode = %q, want orbit", diag.CameraMode)
	}
	if !diag.HaveFix {
		t.Error("diagnostics report no telemetry fix")
	}
	if diag.LastSample.Position.Latitude != 10 {
		t.Errorf("last sample = %+v", diag.LastSample.Position)
	}
	if diag.Frames < 3 {
		t.Errorf("frames = %d, want at least 3", diag.Frames)
	}
	// Dispose ran on the way out of Run; the coordinator is idle again.
	if diag.LoadComplete {
		t.Error("load session not disposed after Run")
	}
}

func TestAppRunFailsWithoutRequiredAsset(t *testing.T) {
	log := logging.Noop()
	coordinator := assets.NewCoordinator(log, nil)
	// Nothing declared: the load completes empty and Build must refuse.
	store := telemetry.NewStore()
	poller := telemetry.NewPoller(&fixedSource{}, store, log, nil, time.Hour, time.Second)
	app := NewApp(log, coordinator, poller, frameloop.New(time.Hour), newTestScene(t, NewHeadless(), store))

	if err := app.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded without the required earth texture")
	}
}

func TestAppSetCameraMode(t *testing.T) {
	log := logging.Noop()
	store := telemetry.NewStore()
	sc := newTestScene(t, NewHeadless(), store)
	app := NewApp(log, nil, nil, frameloop.New(time.Hour), sc)

	if err := app.SetCameraMode("follow"); err != nil {
		t.Fatalf("SetCameraMode: %v", err)
	}
	if sc.CameraMode() != core.ModeFollow {
		t.Fatalf("mode = %v, want follow", sc.CameraMode())
	}
	if err := app.SetCameraMode("cinematic"); err == nil {
		t.Fatal("unknown mode accepted")
	}
}
