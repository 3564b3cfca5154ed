package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hyinit/internal/output"
	"hyinit/internal/patch"
	"hyinit/internal/planner"
)

var (
	planJSON    bool
	planPatches []string
)

var planCmd = &cobra.Command{
	Use:   "plan [class...]",
	Short: "Show the order patches will be applied in",
	Long: `Plan prints, per targeted method, the patches in the order the weaver
applies them. Under the degrade conflict policy it also lists the patches
that would be dropped.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print JSON")
	planCmd.Flags().StringSliceVar(&planPatches, "patches", nil, "extra patch declaration files")
	rootCmd.AddCommand(planCmd)
}

type planEntry struct {
	Patch    string         `json:"patch"`
	Strategy patch.Strategy `json:"strategy"`
	Anchor   string         `json:"anchor,omitempty"`
	Priority int            `json:"priority"`
}

type methodPlan struct {
	Method  string      `json:"method"`
	Patches []planEntry `json:"patches"`
}

type classPlan struct {
	Class   string       `json:"class"`
	Methods []methodPlan `json:"methods"`
	Dropped []string     `json:"dropped,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), planPatches)
	if err != nil {
		return err
	}
	defer s.Close()
	policy, err := planner.ParsePolicy(cfg.Conflicts)
	if err != nil {
		return err
	}

	classes := s.reg.Classes()
	if len(args) > 0 {
		classes = nil
		for _, a := range args {
			classes = append(classes, patch.InternalName(a))
		}
	}

	var out []classPlan
	for _, class := range classes {
		cp, err := planner.ForClass(s.reg, class, policy)
		if err != nil {
			return err
		}
		p := classPlan{Class: class}
		for _, plan := range cp.Plans {
			mp := methodPlan{Method: plan.Target.Method + plan.Target.Desc}
			for _, pt := range plan.Patches {
				e := planEntry{Patch: pt.ID, Strategy: pt.Strategy, Priority: pt.Priority}
				if pt.Strategy != patch.Replace {
					e.Anchor = pt.Anchor.String()
				}
				mp.Patches = append(mp.Patches, e)
			}
			p.Methods = append(p.Methods, mp)
		}
		for _, d := range cp.Dropped {
			p.Dropped = append(p.Dropped, d.Error())
		}
		out = append(out, p)
	}

	w := cmd.OutOrStdout()
	if planJSON {
		return output.EncodeJSON(w, out)
	}
	for _, p := range out {
		fmt.Fprintln(w, p.Class)
		if len(p.Methods) == 0 {
			fmt.Fprintln(w, "  (no patches)")
		}
		for _, m := range p.Methods {
			fmt.Fprintf(w, "  %s\n", m.Method)
			for i, e := range m.Patches {
				fmt.Fprintf(w, "    %d. %-40s %-12s priority=%d %s\n", i+1, e.Patch, e.Strategy, e.Priority, e.Anchor)
			}
		}
		for _, d := range p.Dropped {
			fmt.Fprintf(w, "  dropped: %s\n", d)
		}
	}
	return nil
}
