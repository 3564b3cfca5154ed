package main

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hyinit/internal/output"
	"hyinit/internal/patch"
	"hyinit/internal/render"
)

var (
	patchesJSON  bool
	patchesDOT   string
	patchesExtra []string
)

var patchesCmd = &cobra.Command{
	Use:   "patches",
	Short: "List registered patches",
	Args:  cobra.NoArgs,
	RunE:  runPatches,
}

func init() {
	patchesCmd.Flags().BoolVar(&patchesJSON, "json", false, "print the full declarations as JSON")
	patchesCmd.Flags().StringVar(&patchesDOT, "dot", "", "write a DOT graph of patches grouped by class")
	patchesCmd.Flags().StringSliceVar(&patchesExtra, "patches", nil, "extra patch declaration files")
	rootCmd.AddCommand(patchesCmd)
}

func runPatches(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), patchesExtra)
	if err != nil {
		return err
	}
	defer s.Close()

	all := s.reg.All()
	slices.SortFunc(all, patch.Compare)

	if patchesDOT != "" {
		dot := render.PatchDOT(all, "patches", render.NASA)
		if err := os.WriteFile(patchesDOT, []byte(dot), 0644); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if patchesJSON {
		return output.EncodeJSON(w, all)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tSTRATEGY\tTARGET\tANCHOR\tPRIORITY")
	for _, p := range all {
		anchor := "-"
		if p.Strategy != patch.Replace {
			anchor = p.Anchor.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", p.ID, p.Source, p.Strategy, p.Target, anchor, p.Priority)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if fp, err := s.reg.Fingerprint(); err == nil {
		fmt.Fprintf(w, "\n%d patch(es), fingerprint %s\n", len(all), fp)
	}
	return nil
}
