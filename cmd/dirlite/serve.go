package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/dirlite/internal/config"
	"github.com/KilimcininKorOglu/dirlite/internal/directory"
	"github.com/KilimcininKorOglu/dirlite/internal/logging"
	"github.com/KilimcininKorOglu/dirlite/internal/server"
)

// shutdownTimeout bounds the wait for open connections on shutdown.
const shutdownTimeout = 30 * time.Second

// serveFlags maps serve flags to configuration keys.
var serveFlags = map[string]string{
	"address":         "server.address",
	"records":         "directory.records-file",
	"base-dn":         "directory.base-dn",
	"watch":           "directory.watch",
	"log-level":       "logging.level",
	"metrics-address": "metrics.address",
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the directory server",
		Long: `Start the directory server. Settings are read from the optional
configuration file, then DIRLITE_<KEY> environment variables (also loaded
from .env and .env.local), then command line flags. Environment keys use
'_' for both '.' and '-', e.g. DIRLITE_DIRECTORY_RECORDS_FILE=users.txt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", wrapString("Path to a YAML configuration file"))
	flags.String("address", "", wrapString(`Listen address (default ":389")`))
	flags.IntP("port", "p", 0, wrapString("Listen port, replacing the port of the listen address"))
	flags.StringP("records", "f", "", wrapString(`Path to the records file of "cn;uid;mail" lines`))
	flags.String("base-dn", "", wrapString(`DN suffix appended to "uid=<uid>" in result entries`))
	flags.Bool("watch", false, wrapString("Cache the records file and reload it when it changes"))
	flags.String("log-level", "", wrapString("Log level: debug, info, warn, error (default info)"))
	flags.String("metrics-address", "", wrapString("Address of the Prometheus /metrics endpoint (disabled when empty)"))

	return cmd
}

// loadServeConfig resolves the configuration from defaults, the optional
// config file, the environment and the command's flags.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	config.LoadEnvFiles()
	v := config.NewViper()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := config.ReadFile(v, path); err != nil {
			return nil, err
		}
	}

	for name, key := range serveFlags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		host, _, err := net.SplitHostPort(v.GetString("server.address"))
		if err != nil {
			return nil, fmt.Errorf("invalid listen address: %w", err)
		}
		v.Set("server.address", net.JoinHostPort(host, strconv.Itoa(port)))
	}

	return config.Load(v)
}

// runServer serves until ctx is cancelled or the listener fails.
func runServer(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer logger.Sync()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := server.NewServer(server.Config{
		Address:        cfg.Server.Address,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxMessageSize: cfg.Server.MaxMessageSize,
		MaxConnections: cfg.Server.MaxConnections,
		BaseDN:         cfg.Directory.BaseDN,
		MaxSizeLimit:   cfg.Search.MaxSizeLimit,
		MaxTimeLimit:   cfg.Search.MaxTimeLimit,
	}, store, logger)
	if err != nil {
		return err
	}

	errc := make(chan error, 2)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Address != "" {
		metricsSrv = server.NewMetricsServer(cfg.Metrics.Address, srv.Metrics())
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("metrics endpoint: %w", err)
			}
		}()
		logger.Info("metrics endpoint listening", "address", cfg.Metrics.Address)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics endpoint shutdown failed", "error", err.Error())
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, server.ErrServerClosed) && runErr == nil {
		runErr = err
	}

	if errors.Is(runErr, server.ErrServerClosed) {
		return nil
	}
	return runErr
}

// openStore opens the record store. With watching enabled the records are
// cached and reloaded on change; otherwise the file is read per search.
// The returned function releases the store.
func openStore(cfg *config.Config, logger logging.Logger) (directory.Store, func(), error) {
	path := cfg.Directory.RecordsFile

	if !cfg.Directory.Watch {
		records, err := directory.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		store, err := directory.NewFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("records loaded", "file", path, "records", len(records))
		return store, func() {}, nil
	}

	store, err := directory.NewCachedStore(directory.WatcherConfig{
		FilePath:     path,
		PollInterval: cfg.Directory.PollInterval,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}
	store.Start()
	return store, store.Stop, nil
}
