package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/station-tracker/model"
)

const tol = 1e-9

func vecsClose(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func TestProject_GoldenValues(t *testing.T) {
	cases := []struct {
		name               string
		lat, lon, alt, r   float64
		want               r3.Vec
	}{
		{"equator reference meridian surface", 0, 0, 0, 1, r3.Vec{X: 1}},
		{"north pole", 90, 0, 0, 1, r3.Vec{Y: 1}},
		{"south pole", -90, 0, 0, 1, r3.Vec{Y: -1}},
		{"antimeridian", 0, 180, 0, 1, r3.Vec{X: -1}},
		// Longitude is negated before conversion: 90°E lands at -Z.
		{"east quarter", 0, 90, 0, 1, r3.Vec{Z: -1}},
		{"west quarter", 0, -90, 0, 1, r3.Vec{Z: 1}},
		// One full Earth radius of altitude doubles the magnitude on a
		// normalized sphere.
		{"unit sphere altitude", 0, 0, EarthRadiusKm, 1, r3.Vec{X: 2}},
		// Physical-kilometre regime: altitude is added directly.
		{"physical radius altitude", 0, 0, 420, EarthRadiusKm, r3.Vec{X: EarthRadiusKm + 420}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Project(tc.lat, tc.lon, tc.alt, tc.r)
			if !vecsClose(got, tc.want, tol) {
				t.Fatalf("Project(%v, %v, %v, %v) = %v, want %v",
					tc.lat, tc.lon, tc.alt, tc.r, got, tc.want)
			}
		})
	}
}

// The poles collapse the longitude dependency entirely.
func TestProject_PoleIgnoresLongitude(t *testing.T) {
	for _, lon := range []float64{-180, -91.5, 0, 45, 179.9} {
		got := Project(90, lon, 0, 1)
		if !vecsClose(got, r3.Vec{Y: 1}, tol) {
			t.Fatalf("Project(90, %v, 0, 1) = %v, want (0, 1, 0)", lon, got)
		}
	}
}

func TestProject_MagnitudeInvariant(t *testing.T) {
	for _, tc := range []struct{ lat, lon, alt, r float64 }{
		{51.6, -42.3, 420, 1},
		{-33.9, 151.2, 0, 1},
		{12, 12, 1000, EarthRadiusKm},
	} {
		got := Project(tc.lat, tc.lon, tc.alt, tc.r)
		wantRadius := tc.r + tc.alt*tc.r/EarthRadiusKm
		if diff := math.Abs(r3.Norm(got) - wantRadius); diff > tol {
			t.Fatalf("Project(%v, %v, %v, %v): |v| = %v, want %v",
				tc.lat, tc.lon, tc.alt, tc.r, r3.Norm(got), wantRadius)
		}
	}
}

func TestProject_RoundTrip(t *testing.T) {
	// Skip the exact poles where longitude is undefined.
	for lat := -85.0; lat <= 85.0; lat += 17 {
		for lon := -175.0; lon <= 175.0; lon += 35 {
			p := Project(lat, lon, 420, 1)
			gotLat, gotLon, gotAlt := Unproject(p, 1)
			if math.Abs(gotLat-lat) > 1e-9 || math.Abs(gotLon-lon) > 1e-9 {
				t.Fatalf("round trip (%v, %v) -> (%v, %v)", lat, lon, gotLat, gotLon)
			}
			if math.Abs(gotAlt-420) > 1e-6 {
				t.Fatalf("round trip altitude at (%v, %v): got %v km, want 420", lat, lon, gotAlt)
			}
		}
	}
}

func TestProject_Deterministic(t *testing.T) {
	a := Project(51.6, -42.3, 419.7, 1)
	b := Project(51.6, -42.3, 419.7, 1)
	if a != b {
		t.Fatalf("Project is not deterministic: %v vs %v", a, b)
	}
}

func TestProjectPosition_RejectsOutOfRange(t *testing.T) {
	bad := []model.GeoPosition{
		{Latitude: 90.5},
		{Longitude: -180.5},
		{AltitudeKm: -1},
	}
	for _, pos := range bad {
		if _, err := ProjectPosition(pos, 1); err == nil {
			t.Errorf("ProjectPosition(%#v) succeeded, want validation error", pos)
		}
	}
}

func TestProjectPosition_Valid(t *testing.T) {
	got, err := ProjectPosition(model.GeoPosition{Latitude: 0, Longitude: 0}, 1)
	if err != nil {
		t.Fatalf("ProjectPosition: %v", err)
	}
	if !vecsClose(got, r3.Vec{X: 1}, tol) {
		t.Fatalf("ProjectPosition = %v, want (1, 0, 0)", got)
	}
}

func TestUnproject_Centre(t *testing.T) {
	lat, lon, alt := Unproject(r3.Vec{}, 1)
	if lat != 0 || lon != 0 {
		t.Fatalf("Unproject(centre) lat/lon = %v, %v, want 0, 0", lat, lon)
	}
	if alt != -EarthRadiusKm {
		t.Fatalf("Unproject(centre) alt = %v, want %v", alt, -EarthRadiusKm)
	}
}
