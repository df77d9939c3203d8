package assets

import (
	"encoding/json"
	"fmt"
	"io"
)

// The asset manifest is normally declared in code; the JSON form exists so
// deployments can swap texture sets without a rebuild.

// internal JSON shapes – kept unexported so we're free to evolve them.
type manifestJSON struct {
	Assets []manifestAssetJSON `json:"assets"`
}

type manifestAssetJSON struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"` // "environment-map" | "texture" | "model"
	URL        string `json:"url"`
	ColorSpace string `json:"color_space"` // optional; textures only
	Optional   bool   `json:"optional"`
}

// LoadManifest reads a JSON asset manifest from r and returns the declared
// descriptors. It fails on JSON or structural errors (empty names, unknown
// kinds); duplicate-name handling is left to Coordinator.Define, which
// rejects them the same way in-code declarations are rejected.
func LoadManifest(r io.Reader) ([]Descriptor, error) {
	var payload manifestJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadManifest: decode failed: %w", err)
	}

	descs := make([]Descriptor, 0, len(payload.Assets))
	for _, a := range payload.Assets {
		if a.Name == "" {
			return nil, fmt.Errorf("LoadManifest: asset with empty name")
		}
		kind, err := ParseKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("LoadManifest: asset %q: %w", a.Name, err)
		}
		descs = append(descs, Descriptor{
			Name:     a.Name,
			Kind:     kind,
			URL:      a.URL,
			Options:  Options{ColorSpace: a.ColorSpace},
			Optional: a.Optional,
		})
	}
	return descs, nil
}
