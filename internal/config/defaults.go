package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":389",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxMessageSize: 32 * 1024,
			MaxConnections: 0,
		},
		Directory: DirectoryConfig{
			RecordsFile:  "",
			BaseDN:       "",
			Watch:        false,
			PollInterval: time.Second,
		},
		Search: SearchConfig{
			MaxSizeLimit: 0,
			MaxTimeLimit: 0,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Address: "",
		},
	}
}

// SetDefaults registers every default value with v so that environment
// variables are picked up for keys that appear in no config file.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.read-timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write-timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max-message-size", d.Server.MaxMessageSize)
	v.SetDefault("server.max-connections", d.Server.MaxConnections)

	v.SetDefault("directory.records-file", d.Directory.RecordsFile)
	v.SetDefault("directory.base-dn", d.Directory.BaseDN)
	v.SetDefault("directory.watch", d.Directory.Watch)
	v.SetDefault("directory.poll-interval", d.Directory.PollInterval)

	v.SetDefault("search.max-size-limit", d.Search.MaxSizeLimit)
	v.SetDefault("search.max-time-limit", d.Search.MaxTimeLimit)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("metrics.address", d.Metrics.Address)
}
