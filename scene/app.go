package scene

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/station-tracker/assets"
	"github.com/signalsfoundry/station-tracker/core"
	"github.com/signalsfoundry/station-tracker/frameloop"
	"github.com/signalsfoundry/station-tracker/internal/logging"
	"github.com/signalsfoundry/station-tracker/telemetry"
)

// App is the explicit composition root: it owns the coordinator, poller,
// frame loop, and scene, and exposes the diagnostics snapshot that debug
// tooling reads instead of poking at package globals.
type App struct {
	log         logging.Logger
	coordinator *assets.Coordinator
	poller      *telemetry.Poller
	loop        *frameloop.Loop
	scene       *Scene
}

func NewApp(log logging.Logger, coordinator *assets.Coordinator, poller *telemetry.Poller, loop *frameloop.Loop, sc *Scene) *App {
	if log == nil {
		log = logging.Noop()
	}
	return &App{
		log:         log,
		coordinator: coordinator,
		poller:      poller,
		loop:        loop,
		scene:       sc,
	}
}

// Scene returns the app's scene, for camera-mode switches at runtime.
func (a *App) Scene() *Scene { return a.scene }

// Run loads the declared assets, builds the scene, starts the telemetry
// poller, and drives the frame loop until ctx is cancelled. It tears the
// poller and the load session down on the way out.
func (a *App) Run(ctx context.Context) error {
	handles, err := a.coordinator.Start(ctx)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	if errs := a.coordinator.Errors(); len(errs) > 0 {
		for name, loadErr := range errs {
			a.log.Warn(ctx, "asset unavailable",
				logging.String("asset", name),
				logging.Err(loadErr),
			)
		}
	}

	if err := a.scene.Build(handles); err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	unsubscribe := a.loop.AddListener(a.scene.Tick)
	defer unsubscribe()

	a.poller.Start(ctx)
	defer a.poller.Stop()
	defer a.coordinator.Dispose()

	a.loop.Run(ctx)
	return nil
}

// Diagnostics is a point-in-time snapshot of the app's observable state.
type Diagnostics struct {
	CameraMode   string
	LoadProgress assets.Progress
	LoadComplete bool
	LoadErrors   int
	HaveFix      bool
	LastSample   telemetry.Sample
	Frames       uint64
}

// Diagnostics snapshots the app. Camera mode is owned by the frame
// goroutine; snapshot from there, or while the loop is idle.
func (a *App) Diagnostics() Diagnostics {
	sample, haveFix := a.scene.LastSample()
	return Diagnostics{
		CameraMode:   a.scene.CameraMode().String(),
		LoadProgress: a.coordinator.Progress(),
		LoadComplete: a.coordinator.Complete(),
		LoadErrors:   len(a.coordinator.Errors()),
		HaveFix:      haveFix,
		LastSample:   sample,
		Frames:       a.loop.Frames(),
	}
}

// SetCameraMode switches the camera strategy by name.
func (a *App) SetCameraMode(name string) error {
	mode, err := core.ParseCameraMode(name)
	if err != nil {
		return err
	}
	a.scene.SetCameraMode(mode)
	return nil
}
