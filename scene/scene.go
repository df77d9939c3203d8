package scene

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/station-tracker/assets"
	"github.com/signalsfoundry/station-tracker/core"
	"github.com/signalsfoundry/station-tracker/frameloop"
	"github.com/signalsfoundry/station-tracker/internal/logging"
	"github.com/signalsfoundry/station-tracker/telemetry"
)

// Well-known asset names the scene looks up in the coordinator's resolved
// set. EarthDay is required; the rest degrade gracefully when missing.
const (
	AssetEarthDay  = "earth-day"
	AssetStarfield = "starfield"
	AssetStation   = "station"
)

// MetricsRecorder receives frame and camera telemetry. Implemented by
// observability.TrackerCollector; a nil recorder is a no-op.
type MetricsRecorder interface {
	RecordFrameTick()
	SetCameraMode(active string)
}

// Params sizes the scene.
type Params struct {
	// EarthRadius is the sphere radius in scene units; projection scales
	// altitude against it.
	EarthRadius float64
	// MarkerRadius sizes the tracked-object marker mesh.
	MarkerRadius float64
	// MarkerColor is the marker's flat material color.
	MarkerColor string
}

// Scene owns the renderable objects and advances them once per frame:
// project the latest telemetry sample, move the marker, advance the
// camera, render. It must be built from a completed load session before
// ticking.
type Scene struct {
	log     logging.Logger
	backend Backend
	store   *telemetry.Store
	camera  *core.CameraController
	metrics MetricsRecorder
	params  Params

	mu      sync.Mutex
	built   bool
	earth   Object
	marker  Object
	station Object
	lastPos r3.Vec
	haveFix bool
	sample  telemetry.Sample
}

// New wires a scene; Build must run before the first Tick.
func New(log logging.Logger, backend Backend, store *telemetry.Store, camera *core.CameraController, metrics MetricsRecorder, params Params) *Scene {
	if log == nil {
		log = logging.Noop()
	}
	return &Scene{
		log:     log,
		backend: backend,
		store:   store,
		camera:  camera,
		metrics: metrics,
		params:  params,
	}
}

// Build constructs the renderable objects from a completed load session's
// resolved handles. The earth texture is required; the starfield and
// station model are optional and their absence only degrades the visuals.
func (s *Scene) Build(handles map[string]assets.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return fmt.Errorf("scene already built")
	}

	earthTex, ok := handles[AssetEarthDay].(*assets.Texture)
	if !ok {
		return fmt.Errorf("required asset %q missing from the resolved set", AssetEarthDay)
	}
	earth, err := s.backend.BuildMesh(
		Geometry{Shape: "sphere", Radius: s.params.EarthRadius, Segments: 64},
		Material{Texture: earthTex},
	)
	if err != nil {
		return fmt.Errorf("build earth mesh: %w", err)
	}

	marker, err := s.backend.BuildMesh(
		Geometry{Shape: "sphere", Radius: s.params.MarkerRadius, Segments: 16},
		Material{Color: s.params.MarkerColor},
	)
	if err != nil {
		return fmt.Errorf("build marker mesh: %w", err)
	}

	if env, ok := handles[AssetStarfield].(*assets.EnvironmentMap); ok {
		if err := s.backend.SetEnvironment(env); err != nil {
			s.log.Warn(context.Background(), "environment map rejected; continuing without it", logging.Err(err))
		}
	}

	var station Object
	if mdl, ok := handles[AssetStation].(*assets.Model); ok {
		station, err = s.backend.BuildModel(mdl)
		if err != nil {
			s.log.Warn(context.Background(), "station model rejected; marker only", logging.Err(err))
			station = nil
		}
	}

	s.earth = earth
	s.marker = marker
	s.station = station
	s.built = true
	return nil
}

// Tick advances the scene by one frame. A missing or invalid telemetry
// sample keeps the marker at its last good position; the camera and render
// still run every frame.
func (s *Scene) Tick(f frameloop.FrameInfo) {
	s.mu.Lock()
	if !s.built {
		s.mu.Unlock()
		return
	}

	if sample, ok := s.store.Latest(); ok && sample.FetchedAt != s.sample.FetchedAt {
		pos, err := core.ProjectPosition(sample.Position, s.params.EarthRadius)
		if err != nil {
			// Validation failed downstream of the poller's own check.
			s.log.Warn(context.Background(), "telemetry sample rejected at projection; keeping last position", logging.Err(err))
		} else {
			s.lastPos = pos
			s.haveFix = true
			s.sample = sample
			s.marker.SetPosition(pos)
			if s.station != nil {
				s.station.SetPosition(pos)
			}
		}
	}

	tracked := s.lastPos
	s.mu.Unlock()

	pose := s.camera.Tick(tracked)
	s.backend.Render(pose)
	if s.metrics != nil {
		s.metrics.RecordFrameTick()
	}
}

// SetCameraMode switches the camera strategy, effective on the next frame.
func (s *Scene) SetCameraMode(m core.CameraMode) {
	s.camera.SetMode(m)
	if s.metrics != nil {
		s.metrics.SetCameraMode(m.String())
	}
	s.log.Info(context.Background(), "camera mode switched",
		logging.String("mode", m.String()),
		logging.Bool("user_control", s.camera.UserControlEnabled()),
	)
}

// CameraMode returns the active camera mode.
func (s *Scene) CameraMode() core.CameraMode { return s.camera.Mode() }

// LastFix returns the marker's last good projected position. ok is false
// until the first valid sample lands.
func (s *Scene) LastFix() (pos r3.Vec, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPos, s.haveFix
}

// LastSample returns the last telemetry sample applied to the scene.
func (s *Scene) LastSample() (telemetry.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample, s.haveFix
}
