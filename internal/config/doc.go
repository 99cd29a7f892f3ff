// Package config provides configuration loading and validation for the
// dirlite directory server.
//
// # Overview
//
// Settings are resolved with spf13/viper from, in increasing priority:
//
//   - built-in defaults (DefaultConfig)
//   - an optional YAML configuration file
//   - DIRLITE_ environment variables, optionally read from .env files
//   - command line flags bound by the caller
//
// # Loading Configuration
//
//	config.LoadEnvFiles()
//	v := config.NewViper()
//	if err := config.ReadFile(v, "/etc/dirlite/config.yaml"); err != nil {
//	    return err
//	}
//	cfg, err := config.Load(v)
//
// Load returns ErrInvalidConfig wrapping every ValidationError found.
//
// # Environment Variables
//
// Keys map to variables by upper-casing and replacing '.' and '-' with '_':
//
//	DIRLITE_SERVER_ADDRESS=:1389
//	DIRLITE_DIRECTORY_RECORDS_FILE=/var/lib/dirlite/users.txt
//	DIRLITE_LOGGING_LEVEL=debug
//
// # Example Configuration
//
//	server:
//	  address: ":389"
//	  read-timeout: 30s
//	  write-timeout: 30s
//	  max-message-size: 32768
//	  max-connections: 1000
//
//	directory:
//	  records-file: "${DIRLITE_HOME:-/var/lib/dirlite}/users.txt"
//	  base-dn: "ou=people,dc=example,dc=com"
//	  watch: true
//	  poll-interval: 1s
//
//	search:
//	  max-size-limit: 100
//	  max-time-limit: 10
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
//
//	metrics:
//	  address: ":9389"
package config
