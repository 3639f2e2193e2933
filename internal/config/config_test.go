package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
)

func writeEnvFile(c *qt.C, contents string, keys ...string) string {
	path := filepath.Join(c.TempDir(), "test.env")
	err := os.WriteFile(path, []byte(contents), 0o644)
	c.Assert(err, qt.IsNil)

	// godotenv writes straight into the process environment.
	c.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, Default())
}

func TestLoadFromEnvironment(t *testing.T) {
	c := qt.New(t)
	c.Setenv("HELLO_WIDTH", "1280")
	c.Setenv("HELLO_HEIGHT", "720")
	c.Setenv("HELLO_VALIDATION", "false")
	c.Setenv("HELLO_MULTISAMPLE", "0")
	c.Setenv("HELLO_LOG_LEVEL", "debug")
	c.Setenv("HELLO_STATS_INTERVAL", "250ms")
	c.Setenv("HELLO_ASSET_DIR", "/srv/assets")

	cfg, err := Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Width, qt.Equals, 1280)
	c.Assert(cfg.Height, qt.Equals, 720)
	c.Assert(cfg.Validation, qt.IsFalse)
	c.Assert(cfg.PreferMailbox, qt.IsTrue)
	c.Assert(cfg.Multisample, qt.IsFalse)
	c.Assert(cfg.LogLevel, qt.Equals, logrus.DebugLevel)
	c.Assert(cfg.StatsInterval, qt.Equals, 250*time.Millisecond)
	c.Assert(cfg.Path(cfg.Texture), qt.Equals, "/srv/assets/images/viking_room.png")
}

func TestLoadFromEnvFile(t *testing.T) {
	c := qt.New(t)
	path := writeEnvFile(c, "HELLO_TITLE=from file\nHELLO_MODEL=meshes/cube.obj\n", "HELLO_TITLE", "HELLO_MODEL")

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Title, qt.Equals, "from file")
	c.Assert(cfg.Model, qt.Equals, "meshes/cube.obj")
	c.Assert(cfg.Material, qt.Equals, Default().Material)
}

func TestProcessEnvironmentWinsOverFile(t *testing.T) {
	c := qt.New(t)
	c.Setenv("HELLO_TITLE", "from process")
	path := writeEnvFile(c, "HELLO_TITLE=from file\n")

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Title, qt.Equals, "from process")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		key, value, err string
	}{
		{"HELLO_WIDTH", "wide", `HELLO_WIDTH: strconv.Atoi: parsing "wide": invalid syntax`},
		{"HELLO_HEIGHT", "-1", `window size must be positive, got 800x-1`},
		{"HELLO_VALIDATION", "maybe", `HELLO_VALIDATION: .*invalid syntax`},
		{"HELLO_LOG_LEVEL", "loud", `HELLO_LOG_LEVEL: not a valid logrus Level: "loud"`},
		{"HELLO_STATS_INTERVAL", "-1s", `stats interval must not be negative, got -1s`},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			c := qt.New(t)
			c.Setenv(test.key, test.value)

			_, err := Load()
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := Load(filepath.Join(c.TempDir(), "missing.env"))
	c.Assert(err, qt.ErrorMatches, `load env files .*missing.env.*`)
}

func TestPath(t *testing.T) {
	c := qt.New(t)
	cfg := Default()
	c.Assert(cfg.Path("shaders/vert.spv"), qt.Equals, filepath.Join("assets", "shaders", "vert.spv"))
	c.Assert(cfg.Path("/abs/frag.spv"), qt.Equals, "/abs/frag.spv")
	c.Assert(cfg.Path(""), qt.Equals, "")
}
