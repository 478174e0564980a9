package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Physics   PhysicsConfig   `toml:"physics"`
	Particles ParticlesConfig `toml:"particles"`
	Scripting ScriptingConfig `toml:"scripting"`
	Renderer  RendererConfig  `toml:"renderer"`
	Logging   LoggingConfig   `toml:"logging"`
}

type EngineConfig struct {
	Name      string        `toml:"name"`
	FrameRate time.Duration `toml:"frame_rate"` // frame interval, e.g. "16ms"
	Scene     string        `toml:"scene"`      // optional scene YAML to spawn at boot
}

type PhysicsConfig struct {
	Gravity     float64 `toml:"gravity"`
	GroundPlane bool    `toml:"ground_plane"`
}

type ParticlesConfig struct {
	MaxPerEmitter int `toml:"max_per_emitter"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // Lua scripts directory; empty disables scripting
}

type RendererConfig struct {
	Enabled     bool   `toml:"enabled"`      // serve the websocket viewer
	BindAddress string `toml:"bind_address"` // viewer listen address
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML config file over the defaults. A missing file yields the
// defaults unchanged; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:      "ember",
			FrameRate: 16 * time.Millisecond,
		},
		Physics: PhysicsConfig{
			Gravity:     -9.8,
			GroundPlane: true,
		},
		Particles: ParticlesConfig{
			MaxPerEmitter: 256,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Renderer: RendererConfig{
			Enabled:     false,
			BindAddress: "127.0.0.1:8420",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
