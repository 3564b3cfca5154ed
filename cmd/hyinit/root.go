package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"hyinit/internal/config"
	"hyinit/internal/launch"
	"hyinit/internal/logging"
	"hyinit/internal/manifest"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	verbosity  int
	quiet      bool

	cfg    *config.Config
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "hyinit",
	Short: "hyinit - bytecode patching launcher for the Hytale server",
	Long: `hyinit weaves patches declared by early plugins into the Hytale server's
classes and launches the server on the result.

Patches come from *.patches.{json,yaml,toml} files listed in each early
plugin's manifest.json, from loose declaration files in the early plugins
directory, and from hyinit's built-in set.`,
	Version:           manifest.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate("hyinit {{.Version}}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: hyinit.{toml,yaml,json} in the working directory)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, quiet")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")
	pf.CountVarP(&verbosity, "verbose", "v", "more logging (repeatable)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "no logging")
}

// setup loads the config and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	file := configFile
	if file == "" && cmd.DisableFlagParsing {
		file = launch.FlagValue(args, launch.ConfigFlag)
	}
	c, err := config.Load(file)
	if err != nil {
		return err
	}
	cfg = c

	level := logging.LevelFromString(cfg.LogLevel)
	switch {
	case cmd.Flags().Changed("log-level"):
		level = logging.LevelFromString(logLevel)
	case verbosity > 0 || quiet:
		level = logging.LevelFromVerbosity(verbosity, quiet)
	}
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	logger = logging.New(os.Stderr, level, logging.Format(format))
	slog.SetDefault(logger)
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}
