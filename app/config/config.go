package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Config holds every runtime setting.
type Config struct {
	Env      string `env:"YATUBE_ENV" envDefault:"dev"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000" validate:"required"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error fatal panic"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"badger" validate:"oneof=badger postgres sqlite"`
	BadgerPath    string `env:"BADGER_PATH" envDefault:"data"`
	DatabaseDSN   string `env:"DATABASE_DSN" validate:"required_if=StorageDriver postgres"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"yatube.db"`

	CacheDriver   string        `env:"CACHE_DRIVER" envDefault:"badger" validate:"oneof=badger redis none"`
	RedisAddr     string        `env:"REDIS_ADDR" validate:"required_if=CacheDriver redis"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0" validate:"min=0"`
	IndexCacheTTL time.Duration `env:"INDEX_CACHE_TTL" envDefault:"20s" validate:"min=0"`

	PostsPerPage  int `env:"POSTS_PER_PAGE" envDefault:"10" validate:"min=1"`
	TitleTruncate int `env:"TITLE_TRUNCATE" envDefault:"30" validate:"min=1"`

	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"media" validate:"required"`
	MediaURL       string `env:"MEDIA_URL" envDefault:"/media/" validate:"required,startswith=/,endswith=/"`
	StaticDir      string `env:"STATIC_DIR" envDefault:"static"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880" validate:"min=1"`

	SessionSecret   string        `env:"SESSION_SECRET" envDefault:"dev-secret-change-me-please" validate:"required,min=16"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"336h" validate:"min=1m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"min=0"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	// The envDefault tags are constants, so decoding an empty environment
	// cannot fail.
	cfg, _ := parse(map[string]string{})
	return cfg
}

// Load reads the .env files in the working directory and then the
// environment on top of the defaults.
func Load() (Config, error) {
	LoadDotEnvs("")
	return FromEnv(envMap(os.Environ()))
}

// FromEnv builds a Config from environ, a map of variable names to values.
func FromEnv(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	cfg, err := parse(environ)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(environ map[string]string) (Config, error) {
	return env.ParseAsWithOptions[Config](env.Options{
		Environment: environ,
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): parseDuration,
		},
	})
}

// parseDuration accepts Go durations ("20s") or a bare number of seconds.
func parseDuration(v string) (interface{}, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

var validate = validator.New()

// Validate checks the settings against their constraints.
func (c Config) Validate() error {
	return errors.Wrap(validate.Struct(c), "invalid config")
}
