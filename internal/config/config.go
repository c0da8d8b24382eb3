// Package config loads stacksignal settings from defaults, an optional YAML
// file and STACKSIGNAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/saeedalam/stacksignal/internal/intent"
	"github.com/saeedalam/stacksignal/internal/logging"
	"github.com/saeedalam/stacksignal/internal/scan"
	"github.com/saeedalam/stacksignal/internal/techstack"
	"github.com/saeedalam/stacksignal/pkg/types"
)

// ConfigName is the config file base name searched in the working directory and $HOME
const ConfigName = ".stacksignal"

// EnvPrefix prefixes every environment override
const EnvPrefix = "STACKSIGNAL"

// Config is the full settings tree
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis" json:"analysis" yaml:"analysis"`
	Intent   IntentConfig   `mapstructure:"intent" json:"intent" yaml:"intent"`
	Scan     ScanConfig     `mapstructure:"scan" json:"scan" yaml:"scan"`
	Log      LogConfig      `mapstructure:"log" json:"log" yaml:"log"`
}

// AnalysisConfig tunes repository analysis
type AnalysisConfig struct {
	MaxFiles              int     `mapstructure:"max_files" json:"max_files" yaml:"max_files"`
	SignificanceThreshold float64 `mapstructure:"significance_threshold" json:"significance_threshold" yaml:"significance_threshold"`
	Workers               int     `mapstructure:"workers" json:"workers" yaml:"workers"`
}

// IntentConfig tunes prompt processing
type IntentConfig struct {
	Weights intent.Weights `mapstructure:"weights" json:"weights" yaml:"weights"`
}

// ScanConfig tunes path collection and file reads
type ScanConfig struct {
	MaxFileBytes     int64    `mapstructure:"max_file_bytes" json:"max_file_bytes" yaml:"max_file_bytes"`
	RespectGitignore bool     `mapstructure:"respect_gitignore" json:"respect_gitignore" yaml:"respect_gitignore"`
	Exclude          []string `mapstructure:"exclude" json:"exclude" yaml:"exclude"`
}

// LogConfig selects the log level and handler
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// SetDefaults registers every key with its default value. Environment
// overrides only apply to registered keys.
func SetDefaults(v *viper.Viper) {
	w := intent.DefaultWeights()
	v.SetDefault("analysis.max_files", techstack.DefaultMaxFiles)
	v.SetDefault("analysis.significance_threshold", techstack.DefaultSignificanceThreshold)
	v.SetDefault("analysis.workers", techstack.DefaultWorkers)
	v.SetDefault("intent.weights.action", w.Action)
	v.SetDefault("intent.weights.technology", w.Technology)
	v.SetDefault("intent.weights.focus", w.Focus)
	v.SetDefault("scan.max_file_bytes", scan.DefaultMaxFileBytes)
	v.SetDefault("scan.respect_gitignore", true)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance with defaults and environment binding. When
// cfgFile is empty, .stacksignal.yaml is looked up in the working directory
// and then $HOME.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file into v. A missing file is fine unless it was
// named explicitly.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in settings
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the analyzers cannot run with. Every problem is
// listed in the ValidationError details.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Analysis.MaxFiles < 1 {
		add("analysis.max_files must be at least 1, got %d", c.Analysis.MaxFiles)
	}
	if t := c.Analysis.SignificanceThreshold; t < 0 || t >= 1 || math.IsNaN(t) {
		add("analysis.significance_threshold must be in [0, 1), got %v", t)
	}
	if c.Analysis.Workers < 1 {
		add("analysis.workers must be at least 1, got %d", c.Analysis.Workers)
	}

	w := c.Intent.Weights
	if w.Action < 0 || w.Technology < 0 || w.Focus < 0 {
		add("intent.weights must not be negative")
	}
	if sum := w.Action + w.Technology + w.Focus; math.Abs(sum-1) > 1e-9 {
		add("intent.weights must sum to 1, got %v", sum)
	}

	if err := c.ScanOptions().Validate(); err != nil {
		add("scan: %v", err)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}
	if !logging.ValidFormat(c.Log.Format) {
		add("log.format must be text or json, got %q", c.Log.Format)
	}

	if len(problems) == 0 {
		return nil
	}
	return types.NewError(types.ValidationError, "invalid configuration: "+strings.Join(problems, "; "),
		map[string]any{"problems": problems})
}

// AnalyzerOptions maps the analysis section onto techstack options
func (c *Config) AnalyzerOptions() techstack.Options {
	return techstack.Options{
		MaxFiles:              c.Analysis.MaxFiles,
		SignificanceThreshold: c.Analysis.SignificanceThreshold,
		Workers:               c.Analysis.Workers,
	}
}

// ScanOptions maps the scan section onto scan options
func (c *Config) ScanOptions() scan.Options {
	return scan.Options{
		MaxFileBytes:     c.Scan.MaxFileBytes,
		RespectGitignore: c.Scan.RespectGitignore,
		Exclude:          c.Scan.Exclude,
	}
}
