package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	TranscriptPath   string   `toml:"transcript_path"`
	DBPath           string   `toml:"db_path"`
	LatencyCeiling   Duration `toml:"latency_ceiling"`
	RevivalThreshold Duration `toml:"revival_threshold"`
	SwearWordsFile   string   `toml:"swear_words_file"`
	Stopwords        []string `toml:"stopwords"`
	LogLevel         string   `toml:"log_level"`
}

// Duration decodes TOML strings such as "4h" or "90m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

var defaultStopwords = []string{
	"de", "het", "een", "en", "is", "dat", "van", "ik", "te", "niet", "op",
	"voor", "media", "omitted", "in", "je", "met", "als", "die", "zijn",
	"maar", "heb", "er", "aan", "om", "dan",
}

func Dir(home string) string {
	return filepath.Join(home, ".config", "wastats")
}

// Load reads ~/.config/wastats/config.toml if present. A .env file in the
// working directory and the WASTATS_* environment variables override it.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(Dir(home), "config.toml"), home)
}

func LoadFrom(cfgPath, home string) (*Config, error) {
	cfg := &Config{
		TranscriptPath:   "chat.txt",
		DBPath:           filepath.Join(Dir(home), "wastats.db"),
		LatencyCeiling:   Duration{4 * time.Hour},
		RevivalThreshold: Duration{6 * time.Hour},
		Stopwords:        defaultStopwords,
		LogLevel:         "info",
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	_ = godotenv.Load()
	if v := os.Getenv("WASTATS_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WASTATS_TRANSCRIPT"); v != "" {
		cfg.TranscriptPath = v
	}
	if v := os.Getenv("WASTATS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	// expand ~ in paths
	cfg.TranscriptPath = expandHome(cfg.TranscriptPath, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.SwearWordsFile = expandHome(cfg.SwearWordsFile, home)

	if cfg.LatencyCeiling.Duration <= 0 || cfg.RevivalThreshold.Duration <= 0 {
		return nil, fmt.Errorf("latency_ceiling and revival_threshold must be positive")
	}
	return cfg, nil
}

// StopwordSet returns the configured stopwords as a lookup set.
func (c *Config) StopwordSet() map[string]bool {
	set := make(map[string]bool, len(c.Stopwords))
	for _, w := range c.Stopwords {
		set[strings.ToLower(w)] = true
	}
	return set
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
