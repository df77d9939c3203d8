package assets

import (
	"fmt"
	"strings"
)

// Kind tags how a declared asset is loaded and what handle it resolves to.
type Kind int

const (
	KindEnvironmentMap Kind = iota
	KindTexture
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindEnvironmentMap:
		return "environment-map"
	case KindTexture:
		return "texture"
	case KindModel:
		return "model"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a kind name to its Kind value.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "environment-map", "envmap", "hdr":
		return KindEnvironmentMap, nil
	case "texture":
		return KindTexture, nil
	case "model":
		return KindModel, nil
	default:
		return KindTexture, fmt.Errorf("unknown asset kind %q", s)
	}
}

// Options carries per-kind load settings.
type Options struct {
	// ColorSpace tags a texture's encoding (e.g. "srgb"). Applied by the
	// texture loader after the bytes resolve.
	ColorSpace string
}

// Descriptor declares one named asset. Immutable once declared.
type Descriptor struct {
	Name    string
	Kind    Kind
	URL     string
	Options Options

	// Optional marks assets whose failure the loading UI may soften. The
	// coordinator itself treats every failure the same: reported, counted,
	// never blocking.
	Optional bool
}

// Handle is a resolved in-memory asset.
type Handle interface {
	Name() string
	Kind() Kind
}

// Releaser is implemented by handles that hold releasable resources.
// Dispose calls Release on every handle that implements it.
type Releaser interface {
	Release()
}

// Texture is raw encoded image bytes plus the color-space tag the render
// backend should decode them with.
type Texture struct {
	name       string
	Data       []byte
	ColorSpace string
}

func NewTexture(name string, data []byte, colorSpace string) *Texture {
	return &Texture{name: name, Data: data, ColorSpace: colorSpace}
}

func (t *Texture) Name() string { return t.name }
func (t *Texture) Kind() Kind   { return KindTexture }
func (t *Texture) Release()     { t.Data = nil }

// EnvironmentMap is raw encoded environment (HDR) bytes.
type EnvironmentMap struct {
	name string
	Data []byte
}

func NewEnvironmentMap(name string, data []byte) *EnvironmentMap {
	return &EnvironmentMap{name: name, Data: data}
}

func (e *EnvironmentMap) Name() string { return e.name }
func (e *EnvironmentMap) Kind() Kind   { return KindEnvironmentMap }
func (e *EnvironmentMap) Release()     { e.Data = nil }

// Model is a raw encoded 3D model blob for the render backend to parse.
type Model struct {
	name string
	Data []byte
}

func NewModel(name string, data []byte) *Model {
	return &Model{name: name, Data: data}
}

func (m *Model) Name() string { return m.name }
func (m *Model) Kind() Kind   { return KindModel }
func (m *Model) Release()     { m.Data = nil }
