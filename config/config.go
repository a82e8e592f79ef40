// Package config loads service configuration from a file with environment
// overrides and keeps a live service configuration in step with it.
package config

import (
	"maps"
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/netservice/log"
	"github.com/kochabx/netservice/service"
	"github.com/kochabx/netservice/validator"
)

// Config manages the service configuration file
type Config struct {
	mu       sync.RWMutex        // protects file
	viper    *viper.Viper        // viper instance for configuration management
	validate validator.Validator // validator for configuration validation
	file     File                // last successfully loaded configuration
	loader   Loader              // loader is responsible for loading configuration
	logger   *log.Logger
	name     string
	paths    []string
}

// New creates a new Config instance with the given options.
// If no loader is provided, a FileLoader reads config.yaml from the working directory.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		viper:  viper.New(),
		logger: log.G,
		name:   "config.yaml",
		paths:  []string{"."},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.validate == nil {
		v, err := NewValidator()
		if err != nil {
			return nil, err
		}
		c.validate = v
	}
	if c.loader == nil {
		c.loader = NewFileLoader(c.name, c.paths, c.viper, c.validate)
	}

	return c, nil
}

// NewValidator returns a validator that knows the "cachepolicy" rule
func NewValidator(opts ...validator.Option) (validator.Validator, error) {
	opts = append([]validator.Option{
		validator.WithRule("cachepolicy", validCachePolicy, "{0} must be one of protocol, reload, cache-else-load, cache-only"),
	}, opts...)
	return validator.New(opts...)
}

// Load reads and validates the configuration. A failed load keeps the previous one.
func (c *Config) Load() error {
	var f File
	if err := c.loader.Load(&f); err != nil {
		return err
	}

	c.mu.Lock()
	c.file = f
	c.mu.Unlock()
	return nil
}

// File returns a copy of the loaded configuration
func (c *Config) File() File {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := c.file
	f.Headers = maps.Clone(c.file.Headers)
	if c.file.Log != nil {
		l := *c.file.Log
		f.Log = &l
	}
	return f
}

// Configuration builds a service configuration from the loaded file
func (c *Config) Configuration() (*service.Configuration, error) {
	return c.File().Configuration()
}

// Watch reloads the file on change and re-applies the default cache policy
// and timeout to target. The base URL and default headers of a live
// configuration cannot change; edits to them take effect on the next start.
func (c *Config) Watch(target *service.Configuration) error {
	return c.loader.Watch(func() {
		c.logger.Info().Msg("config change detected")

		if err := c.Load(); err != nil {
			c.logger.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		f := c.File()
		if target != nil {
			target.SetDefaultCachePolicy(f.Policy())
			target.SetDefaultTimeout(f.Timeout)
			if f.BaseURL != target.BaseURL().String() {
				c.logger.Warn().Str("base_url", f.BaseURL).Msg("base url changed; restart to apply")
			}
		}

		c.logger.Info().
			Stringer("cache_policy", f.Policy()).
			Dur("timeout", f.Timeout).
			Msg("config reloaded successfully")
	})
}

// GetViper returns the underlying viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.viper
}

// Load reads the configuration file at path
func Load(path string, opts ...Option) (*Config, error) {
	name, dir := fileName(path)
	c, err := New(append([]Option{WithFile(name, dir)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c, nil
}
