// Package util provides common utilities for wolbook.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir     string `mapstructure:"data_dir"`
	HostsFile   string `mapstructure:"hosts_file"`
	HistoryFile string `mapstructure:"history_file"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`

	// Wake defaults
	DefaultPort int `mapstructure:"default_port"`

	// Dynamic name resolution
	Resolver     ResolverConfig `mapstructure:"resolver"`
	SyncInterval time.Duration  `mapstructure:"sync_interval"`

	// Report settings
	ReportOutputDir string `mapstructure:"report_output_dir"`

	// Web server
	WebPort int `mapstructure:"web_port"`
}

// ResolverConfig selects how dynamic names are resolved.
type ResolverConfig struct {
	// Server is a "host:port" DNS server queried directly. Empty means the
	// platform resolver.
	Server string `mapstructure:"server"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".wolbook")

	return &Config{
		DataDir:     dataDir,
		HostsFile:   filepath.Join(dataDir, "hosts.json"),
		HistoryFile: filepath.Join(dataDir, "history.db"),
		LogLevel:    "info",
		LogFile:     filepath.Join(dataDir, "wolbook.log"),

		DefaultPort: 9,

		SyncInterval: 15 * time.Minute,

		ReportOutputDir: filepath.Join(dataDir, "reports"),
		WebPort:         8080,
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(cfgFile string) (*Config, error) {
	cfg := DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(cfg.DataDir)
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("wolbook")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults in viper
	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("default_port", cfg.DefaultPort)
	viper.SetDefault("resolver.server", cfg.Resolver.Server)
	viper.SetDefault("sync_interval", cfg.SyncInterval)
	viper.SetDefault("web_port", cfg.WebPort)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Files follow a relocated data dir unless set explicitly.
	if !viper.IsSet("hosts_file") {
		cfg.HostsFile = filepath.Join(cfg.DataDir, "hosts.json")
	}
	if !viper.IsSet("history_file") {
		cfg.HistoryFile = filepath.Join(cfg.DataDir, "history.db")
	}
	if !viper.IsSet("log_file") {
		cfg.LogFile = filepath.Join(cfg.DataDir, "wolbook.log")
	}
	if !viper.IsSet("report_output_dir") {
		cfg.ReportOutputDir = filepath.Join(cfg.DataDir, "reports")
	}

	if err := EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	return cfg, nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
