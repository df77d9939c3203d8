package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that unmarshals from TOML strings like
// "2.5s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full tracker configuration: compiled-in defaults,
// optionally overlaid by a TOML file.
type Config struct {
	Telemetry Telemetry `toml:"telemetry"`
	Camera    Camera    `toml:"camera"`
	Scene     Scene     `toml:"scene"`
	Assets    Assets    `toml:"assets"`
	Frame     Frame     `toml:"frame"`
	Metrics   Metrics   `toml:"metrics"`
}

type Telemetry struct {
	// Source selects "http" or "sgp4".
	Source       string   `toml:"source"`
	Endpoint     string   `toml:"endpoint"`
	PollInterval Duration `toml:"poll_interval"`
	FetchTimeout Duration `toml:"fetch_timeout"`
	// TLE lines back the sgp4 source and the http source's offline
	// fallback.
	TLELine1 string `toml:"tle_line1"`
	TLELine2 string `toml:"tle_line2"`
}

type Camera struct {
	Mode         string   `toml:"mode"`
	OrbitRadius  float64  `toml:"orbit_radius"`
	OrbitHeight  float64  `toml:"orbit_height"`
	OrbitStep    float64  `toml:"orbit_step"` // radians per frame
	FollowHeight float64  `toml:"follow_height"`
	FollowBack   float64  `toml:"follow_back"`
	FollowBlend  float64  `toml:"follow_blend"`
}

type Scene struct {
	EarthRadius  float64 `toml:"earth_radius"`
	MarkerRadius float64 `toml:"marker_radius"`
	MarkerColor  string  `toml:"marker_color"`
}

type Assets struct {
	// Manifest is an optional JSON asset manifest; empty means the
	// compiled-in declarations.
	Manifest string `toml:"manifest"`
	// BaseDir anchors relative asset paths.
	BaseDir string `toml:"base_dir"`
}

type Frame struct {
	Interval Duration `toml:"interval"`
}

type Metrics struct {
	// Addr is the listen address for /metrics; empty disables the
	// endpoint.
	Addr string `toml:"addr"`
}

// Default returns the compiled-in configuration: a unit-radius globe, a
// 2.5-second poll against the public ISS endpoint, orbit camera.
func Default() Config {
	return Config{
		Telemetry: Telemetry{
			Source:       "http",
			PollInterval: Duration(2500 * time.Millisecond),
			FetchTimeout: Duration(2 * time.Second),
		},
		Camera: Camera{
			Mode:         "orbit",
			OrbitRadius:  3,
			OrbitHeight:  1,
			OrbitStep:    0.002,
			FollowHeight: 0.6,
			FollowBack:   1.2,
			FollowBlend:  0.08,
		},
		Scene: Scene{
			EarthRadius:  1,
			MarkerRadius: 0.02,
			MarkerColor:  "#b5ffe1",
		},
		Frame: Frame{
			Interval: Duration(16 * time.Millisecond),
		},
		Metrics: Metrics{
			Addr: ":9464",
		},
	}
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path returns the defaults unchanged; fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the tracker cannot run with.
func (c Config) Validate() error {
	switch c.Telemetry.Source {
	case "http", "sgp4":
	default:
		return fmt.Errorf("telemetry source %q: want http or sgp4", c.Telemetry.Source)
	}
	if c.Telemetry.Source == "sgp4" && (c.Telemetry.TLELine1 == "" || c.Telemetry.TLELine2 == "") {
		return fmt.Errorf("sgp4 source needs both TLE lines")
	}
	if c.Telemetry.PollInterval.Std() <= 0 {
		return fmt.Errorf("poll interval %v: want > 0", c.Telemetry.PollInterval.Std())
	}
	if c.Scene.EarthRadius <= 0 {
		return fmt.Errorf("earth radius %v: want > 0", c.Scene.EarthRadius)
	}
	if c.Frame.Interval.Std() <= 0 {
		return fmt.Errorf("frame interval %v: want > 0", c.Frame.Interval.Std())
	}
	if c.Camera.FollowBlend < 0 || c.Camera.FollowBlend > 1 {
		return fmt.Errorf("follow blend %v: want within [0, 1]", c.Camera.FollowBlend)
	}
	return nil
}
