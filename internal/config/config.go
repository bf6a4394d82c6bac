// Package config loads the chargraph TOML file. Every section defaults to the
// values of the package it configures, so a file only names what it changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/psidex/chargraph/internal/graphs"
	"github.com/psidex/chargraph/internal/layout"
	"github.com/psidex/chargraph/internal/lib"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/server"
	"github.com/psidex/chargraph/internal/view"
)

var validate = validator.New()

type Config struct {
	Log    LogConfig         `toml:"log"`
	Theme  render.ThemeNames `toml:"theme"`
	Style  render.Style      `toml:"style"`
	Layout layout.Config     `toml:"layout"`
	View   view.Options      `toml:"view"`
	Server server.Options    `toml:"server"`
	Export ExportConfig      `toml:"export"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// ExportConfig drives the render command.
type ExportConfig struct {
	Title   string   `toml:"title"`
	Formats []string `toml:"formats" validate:"dive,oneof=png svg echarts vis graphology stats snapshot"`
	// SettleStep is the simulated time between frames while settling.
	SettleStep lib.Duration `toml:"settle_step"`
	// MaxFrames bounds settling; a layout still moving after that is exported
	// as it stands.
	MaxFrames int                    `toml:"max_frames" validate:"gt=0"`
	Image     graphs.ImageOptions    `toml:"image"`
	Snapshot  graphs.SnapshotOptions `toml:"snapshot"`
}

func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Style:  render.DefaultStyle(),
		Layout: layout.DefaultConfig(),
		View:   view.DefaultOptions(),
		Server: server.DefaultOptions(),
		Export: ExportConfig{
			Title:      "Character interactions",
			Formats:    []string{"png"},
			SettleStep: lib.DurationFrom(time.Second / 60),
			MaxFrames:  60 * 60,
			Image:      graphs.DefaultImageOptions(),
			Snapshot:   graphs.DefaultSnapshotOptions(),
		},
	}
}

// Dir returns the chargraph config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "chargraph")
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. An empty path means DefaultPath, which
// may be missing; a path given explicitly must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := lib.ParseSLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return validate.Struct(c)
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
