/*
Package config manages TOML config for nextword.

	[server]
	addr = "127.0.0.1:3000"
	transport = "http"
	log_level = "warn"
	shutdown_timeout = 5

	[build]
	corpus = "data.txt"
	min_count = 2
	progress_every = 100000

	[data]
	dir = "data"
	model_file = "model.bin"
	vocab_file = "vocab.txt"

	[cli]
	default_limit = 5
	show_counts = true

The file is created with defaults when missing. A file that fails to parse
as a whole is recovered section by section; unreadable values keep their
defaults. Command line flags take precedence over every value here.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/nextword/internal/utils"
	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/bastiangx/nextword/pkg/trigram"
	"github.com/charmbracelet/log"
)

const (
	TransportHTTP = "http"
	TransportIPC  = "ipc"

	// DefaultMinCount is the default pruning threshold.
	DefaultMinCount = trigram.DefaultMinCount
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Build  BuildConfig  `toml:"build"`
	Data   DataConfig   `toml:"data"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	Transport       string `toml:"transport"`
	LogLevel        string `toml:"log_level"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
}

// BuildConfig holds index build options. They only take effect on the next
// build; a running server never re-reads them.
type BuildConfig struct {
	Corpus        string `toml:"corpus"`
	MinCount      int    `toml:"min_count"`
	ProgressEvery int    `toml:"progress_every"`
}

// DataConfig locates the model files.
type DataConfig struct {
	Dir       string `toml:"dir"`
	ModelFile string `toml:"model_file"`
	VocabFile string `toml:"vocab_file"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowCounts   bool `toml:"show_counts"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:3000",
			Transport:       TransportHTTP,
			LogLevel:        "warn",
			ShutdownTimeout: 5,
		},
		Build: BuildConfig{
			Corpus:        "data.txt",
			MinCount:      DefaultMinCount,
			ProgressEvery: 100000,
		},
		Data: DataConfig{
			Dir:       "data",
			ModelFile: "model.bin",
			VocabFile: "vocab.txt",
		},
		CLI: CliConfig{
			DefaultLimit: 5,
			ShowCounts:   true,
		},
	}
}

// Validate reports values no component can run with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportHTTP, TransportIPC:
	default:
		return fmt.Errorf("server.transport must be %q or %q, got %q", TransportHTTP, TransportIPC, c.Server.Transport)
	}
	if c.Server.Transport == TransportHTTP && c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required for the http transport")
	}
	if c.Build.MinCount < 1 {
		return fmt.Errorf("build.min_count must be at least 1, got %d", c.Build.MinCount)
	}
	if c.CLI.DefaultLimit < 1 || c.CLI.DefaultLimit > suggest.MaxSuggestions {
		return fmt.Errorf("cli.default_limit must be between 1 and %d, got %d", suggest.MaxSuggestions, c.CLI.DefaultLimit)
	}
	return nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/nextword
// 2. ~/Library/Application Support/nextword (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "nextword")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "nextword")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/nextword/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "build"); ok {
		extractBuildConfig(section, &config.Build)
	}
	if section, ok := utils.ExtractSection(tempConfig, "data"); ok {
		extractDataConfig(section, &config.Data)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.Extract[string](data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := utils.Extract[string](data, "transport"); ok {
		server.Transport = val
	}
	if val, ok := utils.Extract[string](data, "log_level"); ok {
		server.LogLevel = val
	}
	if val, ok := utils.ExtractInt(data, "shutdown_timeout"); ok {
		server.ShutdownTimeout = val
	}
}

func extractBuildConfig(data map[string]any, build *BuildConfig) {
	if val, ok := utils.Extract[string](data, "corpus"); ok {
		build.Corpus = val
	}
	if val, ok := utils.ExtractInt(data, "min_count"); ok {
		build.MinCount = val
	}
	if val, ok := utils.ExtractInt(data, "progress_every"); ok {
		build.ProgressEvery = val
	}
}

func extractDataConfig(data map[string]any, dataCfg *DataConfig) {
	if val, ok := utils.Extract[string](data, "dir"); ok {
		dataCfg.Dir = val
	}
	if val, ok := utils.Extract[string](data, "model_file"); ok {
		dataCfg.ModelFile = val
	}
	if val, ok := utils.Extract[string](data, "vocab_file"); ok {
		dataCfg.VocabFile = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.Extract[bool](data, "show_counts"); ok {
		cli.ShowCounts = val
	}
}

// RebuildConfigFile force creates a new config.toml at configPath, or at
// the default path when configPath is empty.
func RebuildConfigFile(configPath string) (string, error) {
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return "", err
		}
		configPath = defaultPath
	}
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return "", err
	}
	return configPath, SaveConfig(DefaultConfig(), configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
