// Package config loads the engine configuration from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/oliverbestmann/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
)

type Window struct {
	Title  string `toml:"title"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type Render struct {
	// MSAA sample count, 1 disables multisampling.
	MSAA uint32 `toml:"msaa"`

	// PresentFormat names the surface texture format, e.g.
	// "bgra8unorm-srgb". Empty picks the surface's preferred format.
	PresentFormat string `toml:"present_format"`

	// ClearColor as rgba components in 0..1.
	ClearColor [4]float64 `toml:"clear_color"`

	// TechniqueDir optionally overlays WGSL techniques from disk.
	TechniqueDir string `toml:"technique_dir"`
}

type Config struct {
	Window   Window `toml:"window"`
	Render   Render `toml:"render"`
	LogLevel string `toml:"log_level"`
	Profile  bool   `toml:"profile"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:  "lumen",
			Width:  1280,
			Height: 800,
		},
		Render: Render{
			MSAA:       1,
			ClearColor: [4]float64{0, 0, 0, 1},
		},
		LogLevel: "info",
	}
}

// Load reads a TOML configuration file, layering it over the defaults.
// A missing file is not an error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration as TOML.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}

	return nil
}

var formats = map[string]wgpu.TextureFormat{
	"bgra8unorm":      wgpu.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": wgpu.TextureFormatBGRA8UnormSrgb,
	"rgba8unorm":      wgpu.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": wgpu.TextureFormatRGBA8UnormSrgb,
	"rgba16float":     wgpu.TextureFormatRGBA16Float,
}

// Format maps the configured present format name to a texture format.
// ok is false for an empty or unknown name, meaning the caller should
// use the surface's preferred format.
func (r Render) Format() (format wgpu.TextureFormat, ok bool) {
	format, ok = formats[r.PresentFormat]

	return format, ok
}
