package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/config"
)

// Tests share the process environment and the package-level cache, so
// none of them run in parallel.

type serverConfig struct {
	Addr    string        `env:"TEST_SERVER_ADDR" envDefault:":8080"`
	Timeout time.Duration `env:"TEST_SERVER_TIMEOUT" envDefault:"30s"`
}

type strictConfig struct {
	Token string `env:"TEST_STRICT_TOKEN,required"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg serverConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadCachesFirstResult(t *testing.T) {
	var first serverConfig
	require.NoError(t, config.Load(&first))

	// Environment changes after the first parse are not observed; every
	// component sees one consistent configuration.
	t.Setenv("TEST_SERVER_ADDR", ":9999")

	var second serverConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.Addr, second.Addr)
}

func TestLoadRequiredMissing(t *testing.T) {
	var cfg strictConfig
	err := config.Load(&cfg)
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNilPointer(t *testing.T) {
	err := config.Load[serverConfig](nil)
	require.ErrorIs(t, err, config.ErrNilPointer)
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() {
		var cfg strictConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnvMissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/does-not-exist.env")
	require.ErrorIs(t, err, config.ErrLoadingEnvFiles)
}
