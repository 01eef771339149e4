package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/ameersohail0/OpenDaVINCI/config"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	Mode            string
	NATSURL         string
	LogLevel        string
	LogFormat       string
	Debug           bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	Validate        bool
}

func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("RECORDBUS_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: RECORDBUS_CONFIG)")
	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("RECORDBUS_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: RECORDBUS_CONFIG)")

	fs.StringVar(&cfg.Mode, "mode", "",
		"Override node.mode: publish, consume, record, replay")

	fs.StringVar(&cfg.NATSURL, "nats", "",
		"Override nats.url")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("RECORDBUS_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: RECORDBUS_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("RECORDBUS_LOG_FORMAT", "json"),
		"Log format: json, text (env: RECORDBUS_LOG_FORMAT)")

	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool("RECORDBUS_DEBUG", false),
		"Enable debug logging (env: RECORDBUS_DEBUG)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("RECORDBUS_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: RECORDBUS_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() { printDetailedHelp(fs, output) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.ConfigPath != "" {
		if err := config.CheckConfigPath(cfg.ConfigPath); err != nil {
			return err
		}
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	modes := []string{"", config.ModePublish, config.ModeConsume, config.ModeRecord, config.ModeReplay}
	if !slices.Contains(modes, cfg.Mode) {
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", cfg.ShutdownTimeout)
	}
	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - typed record bus

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Publish demo records to a local NATS server
  %s --mode=publish --nats=nats://localhost:4222

  # Consume and watch the latest values on ws://localhost:8081/ws
  RECORDBUS_MONITOR_ENABLED=true %s --mode=consume

  # Record everything to a file, then replay it
  %s --mode=record --config=site.yaml
  %s --mode=replay --config=site.yaml

Version: %s
Build: %s
`, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
