// Package config provides configuration loading and validation for the
// dirlite directory server.
package config

import "time"

// Config holds the complete server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Search    SearchConfig    `mapstructure:"search"`
	Logging   LogConfig       `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	WriteTimeout   time.Duration `mapstructure:"write-timeout"`
	MaxMessageSize int           `mapstructure:"max-message-size"`
	MaxConnections int           `mapstructure:"max-connections"` // 0 = unlimited
}

// DirectoryConfig holds record store configuration.
type DirectoryConfig struct {
	RecordsFile  string        `mapstructure:"records-file"`
	BaseDN       string        `mapstructure:"base-dn"`
	Watch        bool          `mapstructure:"watch"`
	PollInterval time.Duration `mapstructure:"poll-interval"`
}

// SearchConfig caps client-requested search limits. Zero means no cap.
type SearchConfig struct {
	MaxSizeLimit int `mapstructure:"max-size-limit"`
	MaxTimeLimit int `mapstructure:"max-time-limit"` // seconds
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the metrics endpoint configuration. An empty
// address disables the endpoint.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
