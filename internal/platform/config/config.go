// Package config layers environment variables over an optional YAML file through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the optional config file searched for in the working directory and ./etc.
const FileName = "tracker"

// New returns a viper instance reading env vars first, then tracker.yaml, then defaults.
// Keys are the env var names in lower case, e.g. "database_driver".
func New(defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./etc")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s config: %w", FileName, err)
		}
	}
	return v, nil
}

// String returns the trimmed string value of key.
func String(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}
