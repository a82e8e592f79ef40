package config

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/service"
	"github.com/kochabx/netservice/transport"
	"github.com/kochabx/netservice/validator"
)

// EnvPrefix prefixes environment overrides, e.g. NETSERVICE_BASE_URL
const EnvPrefix = "NETSERVICE"

const ReasonConfigNotFound = "CONFIG_NOT_FOUND"

// FileLoader loads configuration from file
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
	name     string
	paths    []string
}

// NewFileLoader creates a new file loader. The config type is taken from the
// extension of name.
func NewFileLoader(name string, paths []string, v *viper.Viper, validate validator.Validator) *FileLoader {
	configType := strings.TrimPrefix(filepath.Ext(name), ".")

	for _, configPath := range paths {
		v.AddConfigPath(configPath)
	}
	v.SetConfigName(name)
	v.SetConfigType(configType)

	v.SetDefault("timeout", service.DefaultTimeout)
	v.SetDefault("cache_policy", transport.UseProtocolCachePolicy.String())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys absent from both file and defaults are only seen by Unmarshal when bound
	_ = v.BindEnv("base_url")

	return &FileLoader{
		viper:    v,
		paths:    paths,
		name:     name,
		validate: validate,
	}
}

// Load implements Loader interface
func (l *FileLoader) Load(target any) error {
	if err := l.viper.ReadInConfig(); err != nil {
		return errors.New(404, ReasonConfigNotFound, "config file %s not found", l.name).WithCause(err)
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.viper.Unmarshal(target, hook); err != nil {
		return errors.InvalidConfiguration("config parse error").WithCause(err)
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.InvalidConfiguration("config validation failed: %v", err).WithCause(err)
		}
	}

	return nil
}

// Watch implements Loader interface
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(e fsnotify.Event) {
		if callback != nil && e.Has(fsnotify.Write|fsnotify.Create) {
			callback()
		}
	})

	l.viper.WatchConfig()
	return nil
}

func fileName(path string) (name, dir string) {
	return filepath.Base(path), filepath.Dir(path)
}
