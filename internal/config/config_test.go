package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	t.Run("server defaults", func(t *testing.T) {
		if config.Server.Address != ":389" {
			t.Errorf("expected address ':389', got %q", config.Server.Address)
		}
		if config.Server.MaxConnections != 0 {
			t.Errorf("expected unlimited connections, got %d", config.Server.MaxConnections)
		}
		if config.Server.MaxMessageSize != 32*1024 {
			t.Errorf("expected max message size 32768, got %d", config.Server.MaxMessageSize)
		}
		if config.Server.ReadTimeout != 30*time.Second {
			t.Errorf("expected read timeout 30s, got %v", config.Server.ReadTimeout)
		}
		if config.Server.WriteTimeout != 30*time.Second {
			t.Errorf("expected write timeout 30s, got %v", config.Server.WriteTimeout)
		}
	})

	t.Run("directory defaults", func(t *testing.T) {
		if config.Directory.Watch {
			t.Error("expected watch to be disabled")
		}
		if config.Directory.PollInterval != time.Second {
			t.Errorf("expected poll interval 1s, got %v", config.Directory.PollInterval)
		}
	})

	t.Run("logging defaults", func(t *testing.T) {
		if config.Logging.Level != "info" {
			t.Errorf("expected log level 'info', got %q", config.Logging.Level)
		}
		if config.Logging.Format != "json" {
			t.Errorf("expected log format 'json', got %q", config.Logging.Format)
		}
		if config.Logging.Output != "stdout" {
			t.Errorf("expected log output 'stdout', got %q", config.Logging.Output)
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  address: ":1389"
  read-timeout: 5s
  max-connections: 10
directory:
  records-file: /tmp/users.txt
  base-dn: "dc=example,dc=com"
  watch: true
  poll-interval: 250ms
search:
  max-size-limit: 50
logging:
  level: debug
  format: text
metrics:
  address: "127.0.0.1:9389"
`)
		config, err := LoadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Server.Address != ":1389" {
			t.Errorf("expected address ':1389', got %q", config.Server.Address)
		}
		if config.Server.ReadTimeout != 5*time.Second {
			t.Errorf("expected read timeout 5s, got %v", config.Server.ReadTimeout)
		}
		if config.Server.WriteTimeout != 30*time.Second {
			t.Errorf("expected default write timeout, got %v", config.Server.WriteTimeout)
		}
		if config.Server.MaxConnections != 10 {
			t.Errorf("expected max connections 10, got %d", config.Server.MaxConnections)
		}
		if config.Directory.RecordsFile != "/tmp/users.txt" || config.Directory.BaseDN != "dc=example,dc=com" {
			t.Errorf("unexpected directory config %+v", config.Directory)
		}
		if !config.Directory.Watch || config.Directory.PollInterval != 250*time.Millisecond {
			t.Errorf("unexpected watch config %+v", config.Directory)
		}
		if config.Search.MaxSizeLimit != 50 {
			t.Errorf("expected max size limit 50, got %d", config.Search.MaxSizeLimit)
		}
		if config.Logging.Level != "debug" || config.Logging.Format != "text" {
			t.Errorf("unexpected logging config %+v", config.Logging)
		}
		if config.Metrics.Address != "127.0.0.1:9389" {
			t.Errorf("unexpected metrics address %q", config.Metrics.Address)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "server: [unclosed\n")
		if _, err := LoadFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		path := writeConfig(t, "server:\n  address: \":389\"\n")
		_, err := LoadFile(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
		var ve ValidationError
		if !errors.As(err, &ve) || ve.Field != "directory.records-file" {
			t.Errorf("expected records-file validation error, got %v", err)
		}
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DIRLITE_SERVER_ADDRESS", "127.0.0.1:10389")
	t.Setenv("DIRLITE_SERVER_MAX_CONNECTIONS", "3")
	t.Setenv("DIRLITE_DIRECTORY_RECORDS_FILE", "/srv/users.txt")
	t.Setenv("DIRLITE_SERVER_WRITE_TIMEOUT", "2s")

	config, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Server.Address != "127.0.0.1:10389" {
		t.Errorf("expected env address, got %q", config.Server.Address)
	}
	if config.Server.MaxConnections != 3 {
		t.Errorf("expected max connections 3, got %d", config.Server.MaxConnections)
	}
	if config.Server.WriteTimeout != 2*time.Second {
		t.Errorf("expected write timeout 2s, got %v", config.Server.WriteTimeout)
	}
	if config.Directory.RecordsFile != "/srv/users.txt" {
		t.Errorf("expected env records file, got %q", config.Directory.RecordsFile)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("DIRLITE_LOGGING_LEVEL", "warn")
	path := writeConfig(t, "directory:\n  records-file: /tmp/users.txt\nlogging:\n  level: debug\n")

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("expected env to win over file, got %q", config.Logging.Level)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("DIRLITE_TEST_DOTENV=from-file\n"), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("DIRLITE_TEST_DOTENV", "")
	os.Unsetenv("DIRLITE_TEST_DOTENV")

	LoadEnvFiles(envFile, filepath.Join(dir, "missing.env"))
	if got := os.Getenv("DIRLITE_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("DIRLITE_TEST_HOME", "/srv/dirlite")
	t.Setenv("DIRLITE_TEST_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"records-file: ${DIRLITE_TEST_HOME}/users.txt", "records-file: /srv/dirlite/users.txt"},
		{"records-file: ${DIRLITE_TEST_UNSET:-/tmp}/users.txt", "records-file: /tmp/users.txt"},
		{"level: ${DIRLITE_TEST_EMPTY:-info}", "level: info"},
		{"no references", "no references"},
	}

	for _, tt := range tests {
		if got := string(substituteEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("substituteEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Directory.RecordsFile = "/tmp/users.txt"
		return c
	}

	if errs := ValidateConfig(valid()); len(errs) != 0 {
		t.Fatalf("expected valid config, got %v", errs)
	}

	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"missing address", func(c *Config) { c.Server.Address = "" }, "server.address"},
		{"address without port", func(c *Config) { c.Server.Address = "localhost" }, "server.address"},
		{"negative max connections", func(c *Config) { c.Server.MaxConnections = -1 }, "server.max-connections"},
		{"zero message size", func(c *Config) { c.Server.MaxMessageSize = 0 }, "server.max-message-size"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "server.read-timeout"},
		{"negative write timeout", func(c *Config) { c.Server.WriteTimeout = -time.Second }, "server.write-timeout"},
		{"missing records file", func(c *Config) { c.Directory.RecordsFile = "" }, "directory.records-file"},
		{"bad base dn", func(c *Config) { c.Directory.BaseDN = "example" }, "directory.base-dn"},
		{"watch without interval", func(c *Config) {
			c.Directory.Watch = true
			c.Directory.PollInterval = 0
		}, "directory.poll-interval"},
		{"negative size cap", func(c *Config) { c.Search.MaxSizeLimit = -1 }, "search.max-size-limit"},
		{"negative time cap", func(c *Config) { c.Search.MaxTimeLimit = -1 }, "search.max-time-limit"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"relative log file", func(c *Config) { c.Logging.Output = "dirlite.log" }, "logging.output"},
		{"bad metrics address", func(c *Config) { c.Metrics.Address = "9389" }, "metrics.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			errs := ValidateConfig(c)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			ve, ok := errs[0].(ValidationError)
			if !ok || ve.Field != tt.field {
				t.Errorf("expected error for %s, got %v", tt.field, errs[0])
			}
		})
	}
}
