package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the configuration and returns a list of validation errors.
// An empty slice indicates the configuration is valid.
func ValidateConfig(config *Config) []error {
	var errs []error

	errs = append(errs, validateServerConfig(&config.Server)...)
	errs = append(errs, validateDirectoryConfig(&config.Directory)...)
	errs = append(errs, validateSearchConfig(&config.Search)...)
	errs = append(errs, validateLogConfig(&config.Logging)...)
	errs = append(errs, validateMetricsConfig(&config.Metrics)...)

	return errs
}

// validateServerConfig validates server configuration.
func validateServerConfig(config *ServerConfig) []error {
	var errs []error

	if config.Address == "" {
		errs = append(errs, ValidationError{
			Field:   "server.address",
			Message: "listen address is required",
		})
	} else if err := validateAddress(config.Address); err != nil {
		errs = append(errs, ValidationError{
			Field:   "server.address",
			Message: err.Error(),
		})
	}

	if config.MaxConnections < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.max-connections",
			Message: "must be non-negative",
		})
	}

	if config.MaxMessageSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "server.max-message-size",
			Message: "must be positive",
		})
	}

	if config.ReadTimeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.read-timeout",
			Message: "must be non-negative",
		})
	}

	if config.WriteTimeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.write-timeout",
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateDirectoryConfig validates record store configuration.
func validateDirectoryConfig(config *DirectoryConfig) []error {
	var errs []error

	if config.RecordsFile == "" {
		errs = append(errs, ValidationError{
			Field:   "directory.records-file",
			Message: "records file is required",
		})
	}

	if err := validateDN(config.BaseDN); err != nil {
		errs = append(errs, ValidationError{
			Field:   "directory.base-dn",
			Message: err.Error(),
		})
	}

	if config.Watch && config.PollInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "directory.poll-interval",
			Message: "must be positive when watch is enabled",
		})
	}

	return errs
}

// validateSearchConfig validates search limit caps.
func validateSearchConfig(config *SearchConfig) []error {
	var errs []error

	if config.MaxSizeLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "search.max-size-limit",
			Message: "must be non-negative",
		})
	}

	if config.MaxTimeLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "search.max-time-limit",
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateLogConfig validates logging configuration.
func validateLogConfig(config *LogConfig) []error {
	var errs []error

	// Validate log level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if config.Level != "" && !validLevels[strings.ToLower(config.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be debug, info, warn, or error",
		})
	}

	// Validate log format
	validFormats := map[string]bool{"text": true, "json": true}
	if config.Format != "" && !validFormats[strings.ToLower(config.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be text or json",
		})
	}

	// Validate output
	if config.Output != "" && config.Output != "stdout" && config.Output != "stderr" {
		dir := filepath.Dir(config.Output)
		if !filepath.IsAbs(config.Output) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: "must be stdout, stderr, or an absolute file path",
			})
		} else if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}

	return errs
}

// validateMetricsConfig validates the metrics endpoint configuration.
func validateMetricsConfig(config *MetricsConfig) []error {
	if config.Address == "" {
		return nil
	}
	if err := validateAddress(config.Address); err != nil {
		return []error{ValidationError{
			Field:   "metrics.address",
			Message: err.Error(),
		}}
	}
	return nil
}

// validateAddress validates a network address in host:port format.
func validateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %v", err)
	}

	if port == "" {
		return fmt.Errorf("port is required")
	}

	return nil
}

// validateDN validates a distinguished name format.
func validateDN(dn string) error {
	if dn == "" {
		return nil
	}

	// Basic DN validation: should contain at least one RDN
	parts := strings.Split(dn, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "=") {
			return fmt.Errorf("invalid RDN format: %s", part)
		}
	}

	return nil
}
