package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/canister/framework/cache"
	"github.com/km-arc/canister/framework/config"
	"github.com/km-arc/canister/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// unsetAfter removes variables an env file exported into the process.
func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "canister", cfg.App.Name)
	assert.Equal(t, "local", cfg.App.Env)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "array", cfg.Cache.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.Cleanup)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, "/_canister", cfg.HTTP.Prefix)
	assert.True(t, cfg.HTTP.Diagnostics)
	assert.Empty(t, cfg.Manifests)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setEnv(t, config.EnvName, "billing")
	setEnv(t, config.EnvEnv, "production")
	setEnv(t, config.EnvCacheDriver, "memory")
	setEnv(t, config.EnvCacheCleanup, "90s")
	setEnv(t, config.EnvManifests, "a.hcl, ,b.hcl")

	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "billing", cfg.App.Name)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 90*time.Second, cfg.Cache.Cleanup)
	assert.Equal(t, []string{"a.hcl", "b.hcl"}, cfg.Manifests)
}

func TestLoad_FromEnvFile(t *testing.T) {
	unsetAfter(t,
		config.EnvName, config.EnvEnv, config.EnvDebug, config.EnvLogLevel,
		config.EnvLogFormat, config.EnvCacheDriver, config.EnvCacheCleanup,
		config.EnvManifests, config.EnvHTTPAddr,
	)

	cfg := config.Load("testdata/app.env")

	assert.Equal(t, "billing", cfg.App.Name)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, time.Minute, cfg.Cache.Cleanup)
	assert.Equal(t, []string{"wiring/base.hcl", "wiring/prod.hcl"}, cfg.Manifests)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DebugFlag(t *testing.T) {
	setEnv(t, config.EnvDebug, "false")
	assert.False(t, config.Load("testdata/empty.env").App.Debug)

	setEnv(t, config.EnvDebug, "true")
	assert.True(t, config.Load("testdata/empty.env").App.Debug)
}

// ── Validate ─────────────────────────────────────────────────────────────────

func TestValidate_ReportsEveryBadVariable(t *testing.T) {
	setEnv(t, config.EnvEnv, "staging")
	setEnv(t, config.EnvCacheDriver, "redis")
	setEnv(t, config.EnvCacheCleanup, "forever")
	setEnv(t, config.EnvHTTPAddr, "localhost")
	setEnv(t, config.EnvDebug, "maybe")

	err := config.Load("testdata/empty.env").Validate()
	require.Error(t, err)

	var bag *validation.Errors
	require.ErrorAs(t, err, &bag)
	for _, key := range []string{
		config.EnvEnv, config.EnvCacheDriver, config.EnvCacheCleanup,
		config.EnvHTTPAddr, config.EnvDebug,
	} {
		assert.NotEmpty(t, bag.First(key), key)
	}
	assert.Empty(t, bag.First(config.EnvLogLevel))
}

// ── NewLogger / NewCache ─────────────────────────────────────────────────────

func TestNewLogger(t *testing.T) {
	cfg := config.Load("testdata/empty.env")

	logger, err := config.NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug is disabled at info level")

	cfg.Log.Format = "json"
	logger, err = config.NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Log.Level = "loud"
	_, err = config.NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewCache(t *testing.T) {
	cfg := config.Load("testdata/empty.env")

	c, err := config.NewCache(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.Array{}, c)

	cfg.Cache.Driver = "memory"
	c, err = config.NewCache(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, c)

	cfg.Cache.Driver = "redis"
	_, err = config.NewCache(cfg)
	assert.Error(t, err)
}

// ── Get / GetInt / GetBool / GetDuration ─────────────────────────────────────

func TestGet(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))
	assert.Equal(t, "fallback", config.Get("MISSING_KEY_FOR_TEST", "fallback"))
}

func TestGetInt(t *testing.T) {
	setEnv(t, "SOME_INT", "42")
	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))

	setEnv(t, "SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		setEnv(t, "BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), val)
	}

	setEnv(t, "BOOL_KEY", "false")
	assert.False(t, config.GetBool("BOOL_KEY", true))

	setEnv(t, "BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}

func TestGetDuration(t *testing.T) {
	setEnv(t, "DUR_KEY", "2m")
	assert.Equal(t, 2*time.Minute, config.GetDuration("DUR_KEY", 0))

	setEnv(t, "DUR_KEY", "2")
	assert.Equal(t, time.Second, config.GetDuration("DUR_KEY", time.Second))
}
