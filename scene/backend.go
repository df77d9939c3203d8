package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/station-tracker/assets"
	"github.com/signalsfoundry/station-tracker/core"
)

// Geometry describes a parametric shape for the backend to tessellate.
type Geometry struct {
	// Shape selects the primitive; "sphere" is the only one the tracker
	// needs.
	Shape    string
	Radius   float64
	Segments int
}

// Material describes how a mesh surface is shaded. Texture may be nil for
// flat-colored meshes; Color is a hex string like "#b5ffe1".
type Material struct {
	Texture *assets.Texture
	Color   string
}

// Object is a positioned thing in the scene.
type Object interface {
	SetPosition(p r3.Vec)
}

// Backend is the capability surface a renderer provides. The GPU renderer
// lives outside this module; Headless implements the same surface for the
// CLI and tests.
type Backend interface {
	BuildMesh(geom Geometry, mat Material) (Object, error)
	BuildModel(m *assets.Model) (Object, error)
	SetEnvironment(env *assets.EnvironmentMap) error
	Render(pose core.Pose)
}
