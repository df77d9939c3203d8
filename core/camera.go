package core

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a camera position plus the point it looks at. It is owned by the
// CameraController and mutated once per frame by the active strategy.
type Pose struct {
	Position r3.Vec
	LookAt   r3.Vec
}

// CameraMode enumerates the mutually exclusive camera behaviours.
type CameraMode int

const (
	// ModeOrbit auto-rotates around the sphere at a fixed angular speed,
	// ignoring the tracked object.
	ModeOrbit CameraMode = iota
	// ModeFollow trails and hovers above the tracked object.
	ModeFollow
	// ModeStatic freezes the pose; only user interaction moves the camera.
	ModeStatic
)

func (m CameraMode) String() string {
	switch m {
	case ModeOrbit:
		return "orbit"
	case ModeFollow:
		return "follow"
	case ModeStatic:
		return "static"
	default:
		return fmt.Sprintf("CameraMode(%d)", int(m))
	}
}

// ParseCameraMode maps a mode name to its CameraMode value.
func ParseCameraMode(s string) (CameraMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "orbit":
		return ModeOrbit, nil
	case "follow":
		return ModeFollow, nil
	case "static":
		return ModeStatic, nil
	default:
		return ModeOrbit, fmt.Errorf("unknown camera mode %q", s)
	}
}

// Strategy advances the camera pose by one frame given the tracked object's
// current Cartesian position. Strategies never share a frame; the
// controller dispatches to exactly one per tick.
type Strategy interface {
	Advance(pose Pose, tracked r3.Vec) Pose
}

// OrbitStrategy rotates the camera around the sphere's Y axis at a fixed
// angular step per frame. The angle is tracked independently of the other
// modes, so re-entering orbit resumes from where it left off.
type OrbitStrategy struct {
	Radius      float64
	Height      float64
	AngularStep float64 // radians per frame

	angle float64
}

func (s *OrbitStrategy) Advance(pose Pose, _ r3.Vec) Pose {
	s.angle += s.AngularStep
	return Pose{
		Position: r3.Vec{
			X: s.Radius * math.Cos(s.angle),
			Y: s.Height,
			Z: s.Radius * math.Sin(s.angle),
		},
		LookAt: r3.Vec{},
	}
}

// Angle returns the current orbit angle in radians.
func (s *OrbitStrategy) Angle() float64 { return s.angle }

// FollowStrategy trails the tracked object along its approximate direction
// of travel and hovers above it, easing the live position toward the target
// with a constant blend weight. The blend is per-frame, not time-scaled:
// frame-rate variance changes convergence speed. Known limitation, kept.
type FollowStrategy struct {
	HeightOffset float64
	BackOffset   float64
	Blend        float64
}

func (s *FollowStrategy) Advance(pose Pose, tracked r3.Vec) Pose {
	if r3.Norm(tracked) == 0 {
		// No position yet; hold the pose until telemetry arrives.
		return pose
	}
	dir := r3.Unit(tracked)

	// Direction of travel approximated from position geometry alone via a
	// cross-axis swap; the telemetry velocity magnitude carries no heading.
	// Degenerates exactly at the poles, where the orbit never goes.
	tangent := r3.Vec{X: -dir.Z, Y: 0, Z: dir.X}
	if r3.Norm(tangent) < 1e-12 {
		tangent = r3.Vec{X: 1}
	} else {
		tangent = r3.Unit(tangent)
	}

	target := r3.Add(tracked, r3.Sub(r3.Scale(s.HeightOffset, dir), r3.Scale(s.BackOffset, tangent)))
	return Pose{
		Position: lerp(pose.Position, target, s.Blend),
		// Looking at the sphere centre, not the tracked object, keeps the
		// horizon stable.
		LookAt: r3.Vec{},
	}
}

// StaticStrategy leaves the pose untouched.
type StaticStrategy struct{}

func (StaticStrategy) Advance(pose Pose, _ r3.Vec) Pose { return pose }

// CameraController owns the live camera pose and dispatches each frame to
// the strategy selected by the current mode. Mode switches take effect on
// the next tick; there are no transitional states.
type CameraController struct {
	mode   CameraMode
	orbit  *OrbitStrategy
	follow *FollowStrategy
	static StaticStrategy

	pose        Pose
	userControl bool
}

// NewCameraController starts in orbit mode with user control enabled.
func NewCameraController(orbit *OrbitStrategy, follow *FollowStrategy, initial Pose) *CameraController {
	return &CameraController{
		mode:        ModeOrbit,
		orbit:       orbit,
		follow:      follow,
		pose:        initial,
		userControl: true,
	}
}

// Mode returns the active camera mode.
func (c *CameraController) Mode() CameraMode { return c.mode }

// Pose returns the current camera pose.
func (c *CameraController) Pose() Pose { return c.pose }

// UserControlEnabled reports whether user drag control is currently
// allowed. Follow mode owns the camera exclusively.
func (c *CameraController) UserControlEnabled() bool { return c.userControl }

// SetMode switches the active strategy. Entering follow disables user drag
// control; leaving it restores control.
func (c *CameraController) SetMode(m CameraMode) {
	c.mode = m
	c.userControl = m != ModeFollow
}

// Tick advances the pose by one frame using the active strategy and
// returns the updated pose.
func (c *CameraController) Tick(tracked r3.Vec) Pose {
	switch c.mode {
	case ModeOrbit:
		c.pose = c.orbit.Advance(c.pose, tracked)
	case ModeFollow:
		c.pose = c.follow.Advance(c.pose, tracked)
	case ModeStatic:
		c.pose = c.static.Advance(c.pose, tracked)
	}
	return c.pose
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
