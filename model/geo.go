package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GeoPosition is a geodetic telemetry sample: where the tracked object is
// above the Earth right now. Altitude is kilometres above the surface,
// velocity is ground speed in km/h.
type GeoPosition struct {
	Latitude    float64
	Longitude   float64
	AltitudeKm  float64
	VelocityKmh float64
}

// Validate checks the sample against the accepted geodetic ranges.
// Out-of-range samples are rejected at this boundary rather than clamped;
// callers skip the update entirely.
func (g GeoPosition) Validate() error {
	if g.Latitude < -90 || g.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", g.Latitude)
	}
	if g.Longitude < -180 || g.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", g.Longitude)
	}
	if g.AltitudeKm < 0 {
		return fmt.Errorf("altitude %v km is negative", g.AltitudeKm)
	}
	if g.VelocityKmh < 0 {
		return fmt.Errorf("velocity %v km/h is negative", g.VelocityKmh)
	}
	return nil
}

// internal JSON shape – kept unexported so we're free to evolve it.
// Field names match the telemetry endpoint payload as received.
type geoPositionJSON struct {
	Latitude  flexFloat `json:"latitude"`
	Longitude flexFloat `json:"longitude"`
	Altitude  flexFloat `json:"altitude"`
	Velocity  flexFloat `json:"velocity"`
}

// flexFloat accepts both JSON numbers and numeric strings; the public
// position APIs have served both over time.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse numeric field %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// DecodeGeoPosition parses a telemetry payload into a GeoPosition. The
// result is not validated; callers decide whether to reject out-of-range
// samples.
func DecodeGeoPosition(data []byte) (GeoPosition, error) {
	var payload geoPositionJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return GeoPosition{}, fmt.Errorf("decode telemetry payload: %w", err)
	}
	return GeoPosition{
		Latitude:    float64(payload.Latitude),
		Longitude:   float64(payload.Longitude),
		AltitudeKm:  float64(payload.Altitude),
		VelocityKmh: float64(payload.Velocity),
	}, nil
}
