package telemetry

import (
	"context"
	"time"

	"github.com/signalsfoundry/station-tracker/model"
)

// Sample is one observed position of the tracked target.
type Sample struct {
	Position  model.GeoPosition
	FetchedAt time.Time
}

// Source produces the target's current geodetic position. Implementations
// must be safe for use from a single poller goroutine; they do not need to
// be safe for concurrent Fetch calls.
type Source interface {
	// Fetch returns the current position. It should honor ctx cancellation
	// and deadlines.
	Fetch(ctx context.Context) (model.GeoPosition, error)

	// Name identifies the source in logs and metrics.
	Name() string
}
