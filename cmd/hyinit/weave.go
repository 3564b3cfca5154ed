package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hyinit/internal/archive"
	"hyinit/internal/launch"
	"hyinit/internal/output"
)

var (
	weaveServerJar string
	weaveOutput    string
	weaveReport    string
	weavePatches   []string
)

var weaveCmd = &cobra.Command{
	Use:   "weave",
	Short: "Weave registered patches into the server jar",
	Long: `Weave runs every class targeted by a registered patch through the
transformation pipeline and writes a copy of the server jar holding the
results. Classes that fail to transform are written unchanged and reported.`,
	Args: cobra.NoArgs,
	RunE: runWeave,
}

func init() {
	weaveCmd.Flags().StringVar(&weaveServerJar, "server-jar", "", "server jar (default from config)")
	weaveCmd.Flags().StringVarP(&weaveOutput, "output", "o", "", "woven jar path (default from config)")
	weaveCmd.Flags().StringVar(&weaveReport, "report", "", "write a JSON weave report to this path")
	weaveCmd.Flags().StringSliceVar(&weavePatches, "patches", nil, "extra patch declaration files")
	rootCmd.AddCommand(weaveCmd)
}

func runWeave(cmd *cobra.Command, args []string) error {
	jarPath := orDefault(weaveServerJar, cfg.ServerJar)
	outPath := orDefault(weaveOutput, cfg.Output)

	s, err := openSession(cmd.Context(), weavePatches)
	if err != nil {
		return err
	}
	defer s.Close()

	jar, err := archive.Open(jarPath)
	if err != nil {
		return err
	}
	rep, err := launch.WeaveJar(cmd.Context(), jar, s.reg, s.tr, cfg.WorkerCount(), logger)
	if err != nil {
		return err
	}
	if err := jar.Save(outPath); err != nil {
		return err
	}
	if weaveReport != "" {
		if err := output.WriteReportJSON(weaveReport, rep); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Woven %d class(es) into %s\n", len(rep.Woven), outPath)
	for _, name := range rep.Missing {
		fmt.Fprintf(w, "  missing: %s\n", name)
	}
	for _, d := range rep.Diags {
		fmt.Fprintf(w, "  %s\n", d)
	}
	if len(rep.Diags) > 0 {
		return fmt.Errorf("%d diagnostic(s)", len(rep.Diags))
	}
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
