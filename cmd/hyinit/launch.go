package main

import (
	"github.com/spf13/cobra"

	"hyinit/internal/archive"
	"hyinit/internal/launch"
	"hyinit/internal/loader"
)

var launchCmd = &cobra.Command{
	Use:   "launch [server args...]",
	Short: "Weave the server jar and start the server on it",
	Long: `Launch weaves the server jar, then runs java with the woven jar and every
early plugin on the class path. All arguments except --server-jar and
--hyinit-config are passed to the server unchanged.`,
	DisableFlagParsing: true,
	RunE:               runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	serverJar := launch.LocateServerJar(args, cfg.ServerJar)
	logger.Info("using server jar", "path", serverJar)

	ld := loader.New(nil, logger)
	ld.SetDebug(cfg.DebugClassLoader)
	if err := ld.Standard(ctx, serverJar, "", cfg.EarlyPluginsDir); err != nil {
		return err
	}
	for _, src := range ld.Sources() {
		if !src.Meta.EarlyPlugin {
			continue
		}
		if m := src.Meta.Manifest; m != nil {
			logger.Info("early plugin", "id", m.ID(), "version", m.Version, "path", src.Path)
		} else {
			logger.Info("early plugin", "path", src.Path)
		}
	}

	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := ld.SetTransformer(s.tr); err != nil {
		return err
	}

	// The loader keeps its own copy of the server jar for lookups.
	jar, err := archive.Open(serverJar)
	if err != nil {
		return err
	}
	rep, err := launch.WeaveJar(ctx, jar, s.reg, s.tr, cfg.WorkerCount(), logger)
	if err != nil {
		return err
	}
	if err := jar.Save(cfg.Output); err != nil {
		return err
	}
	logger.Info("server jar woven", "output", cfg.Output, "classes", len(rep.Woven), "diagnostics", len(rep.Diags))

	classPath := []string{cfg.Output}
	for _, src := range ld.Sources() {
		if src.Meta.EarlyPlugin {
			classPath = append(classPath, src.Path)
		}
	}
	c := &launch.Command{
		Java:      cfg.Java,
		ClassPath: classPath,
		Args:      launch.StripArgs(args),
	}
	logger.Debug("starting server", "argv", c.Argv())
	return c.Run(ctx)
}
