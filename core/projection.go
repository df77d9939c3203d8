package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/station-tracker/model"
)

// EarthRadiusKm is the mean Earth radius used to scale telemetry altitude
// onto whatever sphere radius the scene renders (kilometres).
const EarthRadiusKm = 6371.0

// Project converts a geodetic position into a Cartesian point on or above a
// Y-up sphere of the given base radius. Longitude is negated before
// conversion so that east/west match the Earth texture winding; this is a
// deliberate convention, covered by tests, not an accident of the math.
//
// The function is pure: identical inputs always yield the identical vector.
func Project(latDeg, lonDeg, altKm, baseRadius float64) r3.Vec {
	latR := latDeg * math.Pi / 180
	lonR := -lonDeg * math.Pi / 180
	radius := baseRadius + altitudeScale(altKm, baseRadius)
	return r3.Vec{
		X: radius * math.Cos(latR) * math.Cos(lonR),
		Y: radius * math.Sin(latR),
		Z: radius * math.Cos(latR) * math.Sin(lonR),
	}
}

// ProjectPosition validates the sample first and projects it only when it
// is in range. Callers skip the update on error; samples are never clamped.
func ProjectPosition(pos model.GeoPosition, baseRadius float64) (r3.Vec, error) {
	if err := pos.Validate(); err != nil {
		return r3.Vec{}, err
	}
	return Project(pos.Latitude, pos.Longitude, pos.AltitudeKm, baseRadius), nil
}

// altitudeScale maps an altitude in kilometres onto the scene's radius
// units. For a normalized unit sphere (baseRadius 1) this divides by the
// real mean radius; when baseRadius is itself expressed in kilometres the
// ratio is 1 and altitude is added directly.
func altitudeScale(altKm, baseRadius float64) float64 {
	return altKm * baseRadius / EarthRadiusKm
}

// Unproject recovers the geodetic position from a projected vector against
// the same base radius. Used by diagnostics and round-trip tests.
func Unproject(p r3.Vec, baseRadius float64) (latDeg, lonDeg, altKm float64) {
	radius := r3.Norm(p)
	if radius == 0 {
		// Sphere centre: latitude/longitude are undefined, altitude is one
		// full radius below the surface.
		return 0, 0, -EarthRadiusKm
	}
	latDeg = math.Asin(clamp(p.Y/radius, -1, 1)) * 180 / math.Pi
	lonDeg = -math.Atan2(p.Z, p.X) * 180 / math.Pi
	altKm = (radius - baseRadius) * EarthRadiusKm / baseRadius
	return latDeg, lonDeg, altKm
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
