package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/km-arc/canister/framework/validation"
)

// Environment variable names read by Load.
const (
	EnvName         = "CANISTER_NAME"
	EnvEnv          = "CANISTER_ENV"
	EnvDebug        = "CANISTER_DEBUG"
	EnvLogLevel     = "CANISTER_LOG_LEVEL"
	EnvLogFormat    = "CANISTER_LOG_FORMAT"
	EnvCacheDriver  = "CANISTER_CACHE_DRIVER"
	EnvCacheCleanup = "CANISTER_CACHE_CLEANUP"
	EnvManifests    = "CANISTER_MANIFESTS"
	EnvHTTPAddr     = "CANISTER_HTTP_ADDR"
	EnvHTTPPrefix   = "CANISTER_HTTP_PREFIX"
	EnvDiagnostics  = "CANISTER_HTTP_DIAGNOSTICS"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Log       LogConfig
	Cache     CacheConfig
	HTTP      HTTPConfig
	Manifests []string

	// raw holds the string form of every variable, defaults applied, for
	// Validate.
	raw map[string]string
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

type CacheConfig struct {
	Driver  string // array | memory
	Cleanup time.Duration
}

type HTTPConfig struct {
	Addr        string
	Prefix      string
	Diagnostics bool
}

var defaults = map[string]string{
	EnvName:         "canister",
	EnvEnv:          "local",
	EnvDebug:        "true",
	EnvLogLevel:     "info",
	EnvLogFormat:    "console",
	EnvCacheDriver:  "array",
	EnvCacheCleanup: "10m",
	EnvManifests:    "",
	EnvHTTPAddr:     ":8000",
	EnvHTTPPrefix:   "/_canister",
	EnvDiagnostics:  "true",
}

var rules = validation.Rules{
	EnvName:         "required|alpha_dash",
	EnvEnv:          "required|in:local,production,testing",
	EnvDebug:        "required|boolean",
	EnvLogLevel:     "required|in:debug,info,warn,error",
	EnvLogFormat:    "required|in:console,json",
	EnvCacheDriver:  "required|in:array,memory",
	EnvCacheCleanup: "required|duration",
	EnvHTTPAddr:     "required|addr",
	EnvHTTPPrefix:   "required|regex:^/[A-Za-z0-9_/-]*$",
	EnvDiagnostics:  "required|boolean",
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	raw := make(map[string]string, len(defaults))
	for key, fallback := range defaults {
		raw[key] = Get(key, fallback)
	}

	return &Config{
		App: AppConfig{
			Name:  raw[EnvName],
			Env:   raw[EnvEnv],
			Debug: GetBool(EnvDebug, true),
		},
		Log: LogConfig{
			Level:  strings.ToLower(raw[EnvLogLevel]),
			Format: strings.ToLower(raw[EnvLogFormat]),
		},
		Cache: CacheConfig{
			Driver:  raw[EnvCacheDriver],
			Cleanup: GetDuration(EnvCacheCleanup, 10*time.Minute),
		},
		HTTP: HTTPConfig{
			Addr:        raw[EnvHTTPAddr],
			Prefix:      raw[EnvHTTPPrefix],
			Diagnostics: GetBool(EnvDiagnostics, true),
		},
		Manifests: splitList(raw[EnvManifests]),
		raw:       raw,
	}
}

// Validate checks the loaded variables. The returned error is a
// *validation.Errors listing every offending variable.
func (c *Config) Validate() error {
	return validation.Validate(c.raw, rules)
}

// IsProduction reports whether CANISTER_ENV is "production".
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// GetDuration returns a time.Duration env value such as "30s".
func GetDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
