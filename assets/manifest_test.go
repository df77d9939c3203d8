package assets

import (
	"strings"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	payload := `{
		"assets": [
			{"name": "earth-day", "kind": "texture", "url": "textures/earth_day.jpg"},
			{"name": "earth-night", "kind": "texture", "url": "textures/earth_night.jpg", "color_space": "linear"},
			{"name": "starfield", "kind": "environment-map", "url": "env/stars.hdr"},
			{"name": "station", "kind": "model", "url": "models/station.glb", "optional": true}
		]
	}`

	descs, err := LoadManifest(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(descs) != 4 {
		t.Fatalf("got %d descriptors, want 4", len(descs))
	}

	want := []struct {
		name       string
		kind       Kind
		colorSpace string
		optional   bool
	}{
		{"earth-day", KindTexture, "", false},
		{"earth-night", KindTexture, "linear", false},
		{"starfield", KindEnvironmentMap, "", false},
		{"station", KindModel, "", true},
	}
	for i, w := range want {
		d := descs[i]
		if d.Name != w.name || d.Kind != w.kind || d.Options.ColorSpace != w.colorSpace || d.Optional != w.optional {
			t.Errorf("descriptor %d = %+v, want %+v", i, d, w)
		}
	}
}

func TestLoadManifestRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"assets": [`},
		{"empty asset name", `{"assets": [{"name": "", "kind": "texture", "url": "x.jpg"}]}`},
		{"unknown kind", `{"assets": [{"name": "earth", "kind": "spritesheet", "url": "x.jpg"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadManifest(strings.NewReader(tc.payload)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadManifestKindAliases(t *testing.T) {
	payload := `{"assets": [{"name": "sky", "kind": "hdr", "url": "sky.hdr"}]}`
	descs, err := LoadManifest(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if descs[0].Kind != KindEnvironmentMap {
		t.Fatalf("kind = %v, want environment-map", descs[0].Kind)
	}
}
