// Package config loads the YAML configuration shared by the build and
// serve commands. Loaded once at process start, read-only thereafter.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// TokenizerConfig carries the tokenizer file paths. ModelPath and
// IDFPath are accepted for tokenizer implementations that need them;
// the bundled sego adapter uses DictPath, UserDictPath, and
// StopWordPath.
type TokenizerConfig struct {
	DictPath     string `yaml:"dict_path"`
	ModelPath    string `yaml:"model_path"`
	UserDictPath string `yaml:"user_dict_path"`
	IDFPath      string `yaml:"idf_path"`
	StopWordPath string `yaml:"stop_word_path"`
}

// BuildConfig carries the build-phase inputs and outputs. The meta and
// content files derive from PagelibPath by suffix.
type BuildConfig struct {
	DataPath       string `yaml:"data_path"`
	IndexPath      string `yaml:"index_path"`
	PagelibPath    string `yaml:"pagelib_path"`
	DictPathOutput string `yaml:"dict_path_output"`
	DictIndexPath  string `yaml:"dict_index_path"`
}

// MetaPath returns the metadata file path for the separated store.
func (b BuildConfig) MetaPath() string { return b.PagelibPath + ".meta" }

// ContentPath returns the content file path for the separated store.
func (b BuildConfig) ContentPath() string { return b.PagelibPath + ".content" }

// ServerConfig carries the serve-phase settings.
type ServerConfig struct {
	IP        string `yaml:"ip"`
	Port      int    `yaml:"port"`
	CacheSize int    `yaml:"cache_size"`
	StaticDir string `yaml:"static_dir"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// LoggingConfig carries log level and optional file destination.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the complete configuration.
type Config struct {
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Build     BuildConfig     `yaml:"build"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tokenizer: TokenizerConfig{
			DictPath:     "data/dict/dictionary.txt",
			StopWordPath: "data/dict/stop_words.txt",
		},
		Build: BuildConfig{
			DataPath:       "data/corpus",
			IndexPath:      "data/output/index.dat",
			PagelibPath:    "data/output/pagelib.dat",
			DictPathOutput: "data/output/dict.dat",
			DictIndexPath:  "data/output/dict_index.dat",
		},
		Server: ServerConfig{
			IP:        "0.0.0.0",
			Port:      8080,
			CacheSize: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file
// returns the defaults together with the error so the caller decides
// whether the degradation is acceptable.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the invariants every command relies on.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.CacheSize < 1 {
		return fmt.Errorf("invalid cache size %d", c.Server.CacheSize)
	}
	if c.Build.IndexPath == "" {
		return fmt.Errorf("index_path must not be empty")
	}
	if c.Build.PagelibPath == "" {
		return fmt.Errorf("pagelib_path must not be empty")
	}
	return nil
}
