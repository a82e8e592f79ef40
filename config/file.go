package config

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kochabx/netservice/log"
	"github.com/kochabx/netservice/service"
	"github.com/kochabx/netservice/transport"
)

// File is the on-disk description of one backend service
type File struct {
	BaseURL     string            `json:"base_url" mapstructure:"base_url" validate:"required,url"`
	Headers     map[string]string `json:"headers" mapstructure:"headers"`
	CachePolicy string            `json:"cache_policy" mapstructure:"cache_policy" validate:"cachepolicy"`
	Timeout     time.Duration     `json:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// Log switches the service logger to a rotating file when set
	Log *log.FileConfig `json:"log" mapstructure:"log"`
}

// Policy returns the parsed cache policy. Validation guarantees it parses.
func (f File) Policy() transport.CachePolicy {
	p, _ := transport.ParseCachePolicy(f.CachePolicy)
	return p
}

// Configuration builds the service configuration described by f
func (f File) Configuration() (*service.Configuration, error) {
	return service.NewConfiguration(f.BaseURL,
		service.WithDefaultHeaders(f.Headers),
		service.WithDefaultCachePolicy(f.Policy()),
		service.WithDefaultTimeout(f.Timeout),
	)
}

// Logger returns a file logger when Log is set and the global logger otherwise
func (f File) Logger(opts ...log.Option) (*log.Logger, error) {
	if f.Log == nil {
		return log.G, nil
	}
	return log.NewFile(*f.Log, opts...)
}

// validCachePolicy backs the "cachepolicy" rule
func validCachePolicy(fl validator.FieldLevel) bool {
	_, err := transport.ParseCachePolicy(fl.Field().String())
	return err == nil
}
