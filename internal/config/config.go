// Package config reads program settings from the environment. Values may be
// supplied through .env files; variables already set in the process
// environment win over file contents.
package config

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const prefix = "HELLO_"

type Config struct {
	Title  string
	Width  int
	Height int

	Validation    bool
	PreferMailbox bool
	Multisample   bool

	AssetDir       string
	Model          string
	Material       string
	Texture        string
	VertexShader   string
	FragmentShader string
	PipelineCache  string

	LogLevel      logrus.Level
	StatsInterval time.Duration
}

func Default() Config {
	return Config{
		Title:          "Vulkan",
		Width:          800,
		Height:         600,
		Validation:     true,
		PreferMailbox:  true,
		Multisample:    true,
		AssetDir:       "assets",
		Model:          "meshes/viking_room.obj",
		Material:       "meshes/viking_room.mtl",
		Texture:        "images/viking_room.png",
		VertexShader:   "shaders/vert.spv",
		FragmentShader: "shaders/frag.spv",
		PipelineCache:  "pipeline_cache.data",
		LogLevel:       logrus.InfoLevel,
		StatsInterval:  5 * time.Second,
	}
}

// Load applies envFiles in order, then reads every HELLO_* variable over the
// defaults.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		err := godotenv.Load(envFiles...)
		if err != nil {
			return Config{}, errors.Wrapf(err, "load env files %v", envFiles)
		}
	}
	envy.Reload()

	cfg := Default()
	var err error

	cfg.Title = envy.Get(prefix+"TITLE", cfg.Title)
	if cfg.Width, err = intVar("WIDTH", cfg.Width); err != nil {
		return Config{}, err
	}
	if cfg.Height, err = intVar("HEIGHT", cfg.Height); err != nil {
		return Config{}, err
	}
	if cfg.Validation, err = boolVar("VALIDATION", cfg.Validation); err != nil {
		return Config{}, err
	}
	if cfg.PreferMailbox, err = boolVar("PREFER_MAILBOX", cfg.PreferMailbox); err != nil {
		return Config{}, err
	}
	if cfg.Multisample, err = boolVar("MULTISAMPLE", cfg.Multisample); err != nil {
		return Config{}, err
	}

	cfg.AssetDir = envy.Get(prefix+"ASSET_DIR", cfg.AssetDir)
	cfg.Model = envy.Get(prefix+"MODEL", cfg.Model)
	cfg.Material = envy.Get(prefix+"MATERIAL", cfg.Material)
	cfg.Texture = envy.Get(prefix+"TEXTURE", cfg.Texture)
	cfg.VertexShader = envy.Get(prefix+"VERTEX_SHADER", cfg.VertexShader)
	cfg.FragmentShader = envy.Get(prefix+"FRAGMENT_SHADER", cfg.FragmentShader)
	cfg.PipelineCache = envy.Get(prefix+"PIPELINE_CACHE", cfg.PipelineCache)

	cfg.LogLevel, err = logrus.ParseLevel(envy.Get(prefix+"LOG_LEVEL", cfg.LogLevel.String()))
	if err != nil {
		return Config{}, errors.Wrap(err, prefix+"LOG_LEVEL")
	}

	cfg.StatsInterval, err = time.ParseDuration(envy.Get(prefix+"STATS_INTERVAL", cfg.StatsInterval.String()))
	if err != nil {
		return Config{}, errors.Wrap(err, prefix+"STATS_INTERVAL")
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.StatsInterval < 0 {
		return errors.Errorf("stats interval must not be negative, got %s", c.StatsInterval)
	}
	return nil
}

// Path resolves an asset path against AssetDir unless it is already absolute.
func (c Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.AssetDir, name)
}

func intVar(name string, def int) (int, error) {
	value, err := strconv.Atoi(envy.Get(prefix+name, strconv.Itoa(def)))
	if err != nil {
		return 0, errors.Wrap(err, prefix+name)
	}
	return value, nil
}

func boolVar(name string, def bool) (bool, error) {
	value, err := strconv.ParseBool(envy.Get(prefix+name, strconv.FormatBool(def)))
	if err != nil {
		return false, errors.Wrap(err, prefix+name)
	}
	return value, nil
}
