// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables, with an optional
// YAML overlay for file-based settings.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a convenient API that:
//
//   - Loads values from one or multiple `.env` files (fallback to the default
//     `.env` in the current working directory).
//   - Parses the environment into any Go struct using field tags.
//   - Optionally layers a YAML file between `envDefault` values and the
//     process environment, so file contents beat defaults and env vars beat
//     both.
//   - Caches each successfully loaded configuration type so it is only parsed
//     once for the lifetime of the process.
//   - Exposes helpers that panic on failure (`MustLoadEnv`, `MustLoad`) for
//     scenarios where configuration is critical.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields with
// `env` tags (and `yaml` tags if a file overlay is used):
//
//	type ClientConfig struct {
//	    APIURL  string        `env:"STOCKDASH_API_URL" yaml:"api_url" envDefault:"http://localhost:8000"`
//	    Timeout time.Duration `env:"STOCKDASH_HTTP_TIMEOUT" yaml:"http_timeout" envDefault:"30s"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// Subsequent calls to `config.Load(&cfg)` are served from the in-memory cache
// without re-parsing.
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - `ErrParsingConfig`   – failed to parse env vars into struct.
//   - `ErrConfigNotLoaded` – requested config type has not been loaded yet.
//   - `ErrNilPointer`      – nil pointer passed to `Load`/`MustLoad`.
//   - `ErrReadingFile`     – YAML overlay file could not be read or parsed.
//
// # Testing Helpers
//
// Use `ResetCache()` to clear the global cache between tests or
// `ForceReloadConfig(&cfg)` to reload a particular struct after the process
// environment changes.
package config
