package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/netservice/log"
	"github.com/kochabx/netservice/validator"
)

// Option is a function that configures a Config
type Option func(*Config)

// WithViper sets a custom viper instance
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator sets a custom validator. It must know the "cachepolicy" rule.
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader replaces the file loader
func WithLoader(l Loader) Option {
	return func(c *Config) {
		c.loader = l
	}
}

// WithFile reads name from the given search paths instead of ./config.yaml
func WithFile(name string, paths ...string) Option {
	return func(c *Config) {
		c.name = name
		c.paths = paths
	}
}

// WithLogger sets the logger used to report reloads
func WithLogger(logger *log.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}
