package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zboralski/lattice"
	latticerender "github.com/zboralski/lattice/render"

	"hyinit/internal/bytecode"
	"hyinit/internal/callgraph"
	"hyinit/internal/classfile"
	"hyinit/internal/output"
	"hyinit/internal/patch"
	"hyinit/internal/render"
)

var (
	cfgServerJar string
	cfgOut       string
	cfgWoven     bool
	cfgLattice   bool
	cfgPatches   []string
)

var cfgCmd = &cobra.Command{
	Use:   "cfg <class> [method]",
	Short: "Render control-flow graphs as DOT",
	Long: `Cfg writes one DOT file per method of a class to <out>/cfg/. With
--woven the graphs show the bodies after weaving, injected instructions
highlighted. With --lattice the graphs use lattice's block-level layout
instead of one node per basic block listing its instructions.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCFG,
}

func init() {
	f := cfgCmd.Flags()
	f.StringVar(&cfgServerJar, "server-jar", "", "server jar (default from config)")
	f.StringVarP(&cfgOut, "out", "o", "out", "output directory")
	f.BoolVar(&cfgWoven, "woven", false, "graph the woven bodies")
	f.BoolVar(&cfgLattice, "lattice", false, "render with lattice")
	f.StringSliceVar(&cfgPatches, "patches", nil, "extra patch declaration files")
	rootCmd.AddCommand(cfgCmd)
}

func runCFG(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ld, err := openLoader(ctx, cfgServerJar)
	if err != nil {
		return err
	}
	data, err := ld.RawClassBytes(ctx, patch.InternalName(args[0]))
	if err != nil {
		return err
	}
	c, err := classfile.Parse(data)
	if err != nil {
		return err
	}

	var woven map[*classfile.Method]*bytecode.Code
	if cfgWoven {
		s, err := openSession(ctx, cfgPatches)
		if err != nil {
			return err
		}
		defer s.Close()
		if woven, err = s.wovenMethods(c); err != nil {
			return err
		}
	}

	n := 0
	for _, m := range c.Methods {
		if len(args) == 2 && m.Name != args[1] {
			continue
		}
		code, ok := woven[m]
		if !ok {
			if code, err = decodeMethod(c, m); err != nil {
				return err
			}
		}
		if code == nil {
			continue
		}
		name := output.MethodFile(c.Name, m.Name, m.Desc, "dot")
		var dot string
		if cfgLattice {
			info := callgraph.MethodInfo{Class: c.Name, Name: m.Name, Desc: m.Desc, Code: code, Pool: c.Pool}
			fcfg, _ := callgraph.BuildFuncCFG(info)
			dot = latticerender.DOTCFG(&lattice.CFGGraph{Funcs: []*lattice.FuncCFG{fcfg}}, info.ID())
		} else {
			dot = render.CFGDOT(bytecode.BuildCFG(m.Name+m.Desc, code), c.Pool, render.NASA)
		}
		if err := output.WriteDOT(cfgOut, "cfg", name, dot); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		logger.Warn("no methods with code matched", "class", c.Name)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d graph(s) to %s\n", n, cfgOut)
	return nil
}
