// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/sofproj/sof-mcp/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. SOF_LOG_LEVEL.
const EnvPrefix = "SOF"

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the configuration. An empty path uses defaults and the
// environment only; otherwise the file type follows its extension (toml,
// yaml, json).
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.Wrap(errors.ErrInvalidConfig, err.Error()), "read config file "+path)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.Wrap(errors.ErrInvalidConfig, err.Error()), "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
