// Package config loads hyinit settings from hyinit.{toml,yaml,json} and
// HYINIT_* environment variables. The environment wins over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"hyinit/internal/pipeline"
	"hyinit/internal/planner"
)

// FileName is the config file base name searched for without extension.
const FileName = "hyinit"

// Config holds every setting the CLI understands.
type Config struct {
	ServerJar        string   `mapstructure:"server_jar" env:"HYINIT_SERVER_JAR"`
	Output           string   `mapstructure:"output" env:"HYINIT_OUTPUT"`
	Java             string   `mapstructure:"java" env:"HYINIT_JAVA"`
	EarlyPluginsDir  string   `mapstructure:"early_plugins_dir" env:"HYINIT_EARLY_PLUGINS_DIR"`
	CacheDB          string   `mapstructure:"cache_db" env:"HYINIT_CACHE_DB"`
	LogLevel         string   `mapstructure:"log_level" env:"HYINIT_LOG_LEVEL"`
	LogFormat        string   `mapstructure:"log_format" env:"HYINIT_LOG_FORMAT"`
	DebugClassLoader bool     `mapstructure:"debug_classloader" env:"HYINIT_DEBUG_CLASSLOADER"`
	Conflicts        string   `mapstructure:"conflicts" env:"HYINIT_CONFLICTS"`
	Fallback         string   `mapstructure:"fallback" env:"HYINIT_FALLBACK"`
	ComputeMaxs      bool     `mapstructure:"compute_maxs" env:"HYINIT_COMPUTE_MAXS"`
	Frames           bool     `mapstructure:"frames" env:"HYINIT_FRAMES"`
	Workers          int      `mapstructure:"workers" env:"HYINIT_WORKERS"`
	Exclude          []string `mapstructure:"exclude" env:"HYINIT_EXCLUDE" envSeparator:","`
	Builtins         bool     `mapstructure:"builtins" env:"HYINIT_BUILTINS"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" env:"-"`
}

// ConfigError reports an unusable setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Field + ": " + e.Message
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		ServerJar:       "HytaleServer.jar",
		Output:          "HytaleServer.hyinit.jar",
		Java:            "java",
		EarlyPluginsDir: "earlyplugins",
		LogLevel:        "info",
		LogFormat:       "text",
		Conflicts:       "abort",
		Fallback:        "class",
		ComputeMaxs:     true,
		Frames:          true,
		Workers:         runtime.GOMAXPROCS(0),
		Builtins:        true,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server_jar", d.ServerJar)
	v.SetDefault("output", d.Output)
	v.SetDefault("java", d.Java)
	v.SetDefault("early_plugins_dir", d.EarlyPluginsDir)
	v.SetDefault("cache_db", d.CacheDB)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("debug_classloader", d.DebugClassLoader)
	v.SetDefault("conflicts", d.Conflicts)
	v.SetDefault("fallback", d.Fallback)
	v.SetDefault("compute_maxs", d.ComputeMaxs)
	v.SetDefault("frames", d.Frames)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("builtins", d.Builtins)
}

// Load reads file when it is set, otherwise searches dirs (default the
// working directory) for hyinit.toml, hyinit.yaml or hyinit.json. A
// missing searched file is not an error; a missing explicit file is.
func Load(file string, dirs ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have a closed set of values.
func (c *Config) Validate() error {
	if _, err := planner.ParsePolicy(c.Conflicts); err != nil {
		return &ConfigError{Field: "conflicts", Message: fmt.Sprintf("%q is not abort or degrade", c.Conflicts)}
	}
	if _, err := pipeline.ParseFallback(c.Fallback); err != nil {
		return &ConfigError{Field: "fallback", Message: fmt.Sprintf("%q is not class or method", c.Fallback)}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return &ConfigError{Field: "log_format", Message: fmt.Sprintf("%q is not text or json", c.LogFormat)}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Message: "must not be negative"}
	}
	return nil
}

// PipelineOptions converts the transformation settings. Validate must
// have passed.
func (c *Config) PipelineOptions(log *slog.Logger) pipeline.Options {
	conflicts, _ := planner.ParsePolicy(c.Conflicts)
	fallback, _ := pipeline.ParseFallback(c.Fallback)
	return pipeline.Options{
		Conflicts:   conflicts,
		Fallback:    fallback,
		ComputeMaxs: c.ComputeMaxs,
		Frames:      c.Frames,
		Exclude:     append([]string(nil), c.Exclude...),
		Logger:      log,
	}
}

// WorkerCount returns Workers, or GOMAXPROCS when it is zero.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
