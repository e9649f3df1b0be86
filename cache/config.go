package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config exposes decorator and engine settings for consumers of the cache package.
type Config struct {
	Prefix       string        `mapstructure:"prefix"`
	Window       time.Duration `mapstructure:"window"`
	Codec        string        `mapstructure:"codec"`
	SingleFlight bool          `mapstructure:"single_flight"`
	AsyncWrites  bool          `mapstructure:"async_writes"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

const (
	CodecMsgpack = "msgpack"
	CodecJSON    = "json"
)

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:       "cache",
		Window:       DefaultWindow,
		Codec:        CodecMsgpack,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Window, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Codec, validation.In(CodecMsgpack, CodecJSON)),
		validation.Field(&c.WriteTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// EngineOptions translates the config into engine options.
func (c Config) EngineOptions() []EngineOption {
	opts := []EngineOption{WithPrefix(c.Prefix)}
	if c.Codec == CodecJSON {
		opts = append(opts, WithCodec(JSONCodec{}))
	}
	return opts
}

// Options translates the config into decorator options.
func (c Config) Options() []Option {
	opts := []Option{
		WithExpiration(c.Window),
		WithWriteTimeout(c.WriteTimeout),
	}
	if c.SingleFlight {
		opts = append(opts, WithSingleFlight())
	}
	if c.AsyncWrites {
		opts = append(opts, WithAsyncWrites())
	}
	return opts
}

// New validates cfg and builds a Decorator over store. Extra options are
// applied after the ones derived from cfg.
func New(store Store, cfg Config, opts ...Option) (*Decorator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine := NewEngine(store, cfg.EngineOptions()...)
	return NewDecorator(engine, append(cfg.Options(), opts...)...), nil
}
