package telemetry

import (
	"context"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/station-tracker/model"
)

// SGP4Source propagates the target's two-line element set instead of
// calling out over the network. It backs the offline mode and is the
// fallback when the HTTP endpoint is unreachable.
type SGP4Source struct {
	sat satellite.Satellite

	// now is replaceable in tests for deterministic propagation.
	now func() time.Time
}

// NewSGP4Source builds a propagating source from the target's TLE.
func NewSGP4Source(target model.Target) (*SGP4Source, error) {
	if !target.HasTLE() {
		return nil, fmt.Errorf("target %q has no TLE to propagate", target.ID)
	}
	sat := satellite.TLEToSat(target.TLELine1, target.TLELine2, satellite.GravityWGS72)
	return &SGP4Source{sat: sat, now: time.Now}, nil
}

func (s *SGP4Source) Name() string { return "sgp4" }

// Fetch propagates the orbit to the current time and converts the ECI
// state to geodetic coordinates. go-satellite works in kilometres and
// km/s; positions are reported in degrees, km, and km/h.
func (s *SGP4Source) Fetch(ctx context.Context) (model.GeoPosition, error) {
	if err := ctx.Err(); err != nil {
		return model.GeoPosition{}, err
	}

	t := s.now().UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(s.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	altKm, velKmps, latLon := satellite.ECIToLLA(posECI, gmst)

	const radToDeg = 180.0 / math.Pi
	pos := model.GeoPosition{
		Latitude:    latLon.Latitude * radToDeg,
		Longitude:   normalizeLongitude(latLon.Longitude * radToDeg),
		AltitudeKm:  altKm,
		VelocityKmh: velKmps * 3600,
	}
	if err := pos.Validate(); err != nil {
		return model.GeoPosition{}, fmt.Errorf("propagated position invalid: %w", err)
	}
	return pos, nil
}

// normalizeLongitude wraps a longitude in degrees into [-180, 180].
func normalizeLongitude(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
