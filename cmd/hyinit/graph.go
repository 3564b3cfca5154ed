package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	latticerender "github.com/zboralski/lattice/render"

	"hyinit/internal/callgraph"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
)

var (
	graphServerJar string
	graphOut       string
	graphPatches   bool
	graphExtra     []string
)

var graphCmd = &cobra.Command{
	Use:   "graph [class...]",
	Short: "Render a call graph as DOT",
	Long: `Graph writes the call graph of the named classes. Without class
arguments it graphs every class a patch targets. With --patches it graphs
patches instead: plugin to target method, and target method to the call
each redirect replaces.`,
	RunE: runGraph,
}

func init() {
	f := graphCmd.Flags()
	f.StringVar(&graphServerJar, "server-jar", "", "server jar (default from config)")
	f.StringVarP(&graphOut, "out", "o", "callgraph.dot", "output file")
	f.BoolVar(&graphPatches, "patches", false, "graph patch sources and targets")
	f.StringSliceVar(&graphExtra, "patch-file", nil, "extra patch declaration files")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, graphExtra)
	if err != nil {
		return err
	}
	defer s.Close()

	var dot string
	if graphPatches {
		dot = latticerender.DOT(callgraph.BuildPatchGraph(s.reg.All()), "patches")
	} else {
		classes := s.reg.Classes()
		if len(args) > 0 {
			classes = nil
			for _, a := range args {
				classes = append(classes, patch.InternalName(a))
			}
		}
		ld, err := openLoader(ctx, graphServerJar)
		if err != nil {
			return err
		}
		var methods []callgraph.MethodInfo
		for _, name := range classes {
			data, err := ld.RawClassBytes(ctx, name)
			if err != nil {
				logger.Warn("skipping class", "class", name, "error", err)
				continue
			}
			c, err := classfile.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			methods = append(methods, callgraph.Methods(c)...)
		}
		dot = latticerender.DOT(callgraph.BuildCallGraph(methods), "callgraph")
	}

	if err := os.WriteFile(graphOut, []byte(dot), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", graphOut)
	return nil
}
