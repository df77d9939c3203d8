package model

// Target identifies the object being tracked. Identity only; position is
// always the latest telemetry sample, never stored here.
type Target struct {
	ID   string
	Name string

	// NoradID and the TLE lines are optional; they enable offline SGP4
	// propagation when the live telemetry endpoint is unreachable.
	NoradID  uint32
	TLELine1 string
	TLELine2 string
}

// HasTLE reports whether the target carries a usable two-line element set.
func (t Target) HasTLE() bool {
	return t.TLELine1 != "" && t.TLELine2 != ""
}
