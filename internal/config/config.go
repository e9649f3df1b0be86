// Package config loads the service configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/goliatone/go-search-cache/cache"
	"github.com/goliatone/go-search-cache/internal/cacheinfra"
	"github.com/goliatone/go-search-cache/internal/searchinfra"
	"github.com/goliatone/go-search-cache/pkg/log"
)

// Cache backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Expiration windows per entity family.
const (
	DefaultFilmsWindow   = 5 * time.Minute
	DefaultGenresWindow  = 24 * time.Hour
	DefaultPersonsWindow = 24 * time.Hour
)

type Config struct {
	Log           log.Config              `mapstructure:"log"`
	Elasticsearch searchinfra.Config      `mapstructure:"elasticsearch"`
	Backend       string                  `mapstructure:"backend"`
	Redis         cacheinfra.RedisConfig  `mapstructure:"redis"`
	Memory        cacheinfra.MemoryConfig `mapstructure:"memory"`
	Cache         cache.Config            `mapstructure:"cache"`
	Windows       Windows                 `mapstructure:"windows"`
	Metrics       MetricsConfig           `mapstructure:"metrics"`
}

// Windows overrides cache.Config.Window for each entity family.
type Windows struct {
	Films   time.Duration `mapstructure:"films"`
	Genres  time.Duration `mapstructure:"genres"`
	Persons time.Duration `mapstructure:"persons"`
}

func (w Windows) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Films, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&w.Genres, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&w.Persons, validation.Required, validation.Min(time.Millisecond)),
	)
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Validate checks the whole tree. Only the selected backend is validated.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendRedis, BackendMemory)),
		validation.Field(&c.Elasticsearch),
		validation.Field(&c.Redis, validation.Skip.When(c.Backend != BackendRedis)),
		validation.Field(&c.Memory, validation.Skip.When(c.Backend != BackendMemory)),
		validation.Field(&c.Cache),
		validation.Field(&c.Windows),
	)
}

// Load reads config.yaml from configPath (or the working directory and
// ./config when empty), then applies environment overrides and validates.
// A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath, "config")
	if err != nil {
		return nil, err
	}
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func newViper(configPath, configName string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	cacheDefaults := cache.DefaultConfig()
	memory := cacheinfra.DefaultMemoryConfig()
	redis := cacheinfra.DefaultRedisConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "search-cache")

	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")

	v.SetDefault("backend", BackendRedis)

	v.SetDefault("redis.address", redis.Address)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.retention", redis.Retention)
	v.SetDefault("redis.dial_timeout", redis.DialTimeout)

	v.SetDefault("memory.capacity", memory.Capacity)
	v.SetDefault("memory.num_shards", memory.NumShards)
	v.SetDefault("memory.retention", memory.Retention)
	v.SetDefault("memory.eviction_percentage", memory.EvictionPercentage)
	v.SetDefault("memory.eviction_interval", memory.EvictionInterval)

	v.SetDefault("cache.prefix", "movies")
	v.SetDefault("cache.window", cacheDefaults.Window)
	v.SetDefault("cache.codec", cacheDefaults.Codec)
	v.SetDefault("cache.single_flight", false)
	v.SetDefault("cache.async_writes", false)
	v.SetDefault("cache.write_timeout", cacheDefaults.WriteTimeout)

	v.SetDefault("windows.films", DefaultFilmsWindow)
	v.SetDefault("windows.genres", DefaultGenresWindow)
	v.SetDefault("windows.persons", DefaultPersonsWindow)

	v.SetDefault("metrics.namespace", "search_cache")
}

var envBindings = map[string]string{
	"log.level":               "LOG_LEVEL",
	"elasticsearch.addresses": "ES_ADDRESSES",
	"elasticsearch.username":  "ES_USERNAME",
	"elasticsearch.password":  "ES_PASSWORD",
	"backend":                 "CACHE_BACKEND",
	"redis.address":           "REDIS_ADDRESS",
	"redis.password":          "REDIS_PASSWORD",
	"redis.db":                "REDIS_DB",
	"cache.prefix":            "CACHE_PREFIX",
	"cache.codec":             "CACHE_CODEC",
	"windows.films":           "FILMS_CACHE_EXPIRE",
	"windows.genres":          "GENRES_CACHE_EXPIRE",
	"windows.persons":         "PERSONS_CACHE_EXPIRE",
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}
