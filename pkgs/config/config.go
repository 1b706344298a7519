package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Server holds the bus connection parameters, per spec.md §6's DSN forms,
// plus the cache directory and log level the teacher's config carries
// alongside its own Server section.
type Server struct {
	Address  string
	Type     string
	CacheDir string
	LogLevel string
}

type Configuration struct {
	Server Server
}

// NewConfig reads .govelbus.yaml from $HOME and the working directory,
// following the teacher's NewConfig shape: a single viper instance, sane
// defaults set ahead of ReadInConfig so a missing file still yields a
// usable configuration.
func NewConfig() (*Configuration, error) {
	config := Configuration{}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(".govelbus")
	v.AddConfigPath("$HOME/")
	v.AddConfigPath(".")
	_ = v.SafeWriteConfig()

	v.SetDefault("server.address", "192.168.0.111:6000")
	v.SetDefault("server.type", "tcp")
	v.SetDefault("server.cachedir", "")
	v.SetDefault("server.loglevel", "info")

	if err := v.ReadInConfig(); err != nil {
		// make .govelbus.yaml fully optional, matching the teacher's
		// handling of loco.json's "Not Found" case
		if !strings.Contains(err.Error(), "Not Found") {
			return &Configuration{}, fmt.Errorf("cannot parse config: %s", err.Error())
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return &config, fmt.Errorf("cannot parse config: %s", err.Error())
	}

	return &config, nil
}
