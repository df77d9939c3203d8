package scene

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/station-tracker/assets"
	"github.com/signalsfoundry/station-tracker/core"
)

// Headless is a render backend that draws nothing. It keeps enough
// accounting (objects built, last rendered pose, render count) to drive
// the CLI and to let tests observe what a real renderer would have seen.
type Headless struct {
	mu       sync.Mutex
	meshes   int
	models   int
	envSet   bool
	renders  uint64
	lastPose core.Pose
}

func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) BuildMesh(geom Geometry, mat Material) (Object, error) {
	if geom.Radius <= 0 {
		return nil, fmt.Errorf("mesh %q has non-positive radius %v", geom.Shape, geom.Radius)
	}
	h.mu.Lock()
	h.meshes++
	h.mu.Unlock()
	return &HeadlessObject{}, nil
}

func (h *Headless) BuildModel(m *assets.Model) (Object, error) {
	if m == nil || len(m.Data) == 0 {
		return nil, fmt.Errorf("model asset is empty")
	}
	h.mu.Lock()
	h.models++
	h.mu.Unlock()
	return &HeadlessObject{}, nil
}

func (h *Headless) SetEnvironment(env *assets.EnvironmentMap) error {
	if env == nil || len(env.Data) == 0 {
		return fmt.Errorf("environment map is empty")
	}
	h.mu.Lock()
	h.envSet = true
	h.mu.Unlock()
	return nil
}

func (h *Headless) Render(pose core.Pose) {
	h.mu.Lock()
	h.renders++
	h.lastPose = pose
	h.mu.Unlock()
}

// Renders returns how many frames have been rendered.
func (h *Headless) Renders() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.renders
}

// LastPose returns the camera pose of the most recent render.
func (h *Headless) LastPose() core.Pose {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastPose
}

// Built reports the number of meshes and models built and whether an
// environment map was installed.
func (h *Headless) Built() (meshes, models int, envSet bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.meshes, h.models, h.envSet
}

// HeadlessObject records the position a renderer object would hold.
type HeadlessObject struct {
	mu  sync.Mutex
	pos r3.Vec
}

func (o *HeadlessObject) SetPosition(p r3.Vec) {
	o.mu.Lock()
	o.pos = p
	o.mu.Unlock()
}

// Position returns the last position set.
func (o *HeadlessObject) Position() r3.Vec {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pos
}
