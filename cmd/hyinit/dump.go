package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/loader"
	"hyinit/internal/output"
	"hyinit/internal/patch"
)

var (
	dumpServerJar   string
	dumpOut         string
	dumpMethod      string
	dumpWoven       bool
	dumpTransformed bool
	dumpPatches     []string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <class>",
	Short: "Disassemble a class from the server jar or an early plugin",
	Long: `Dump prints the bytecode of every method of a class. With --woven the
planned patches are applied without verification and injected instructions
are marked "injected". With --transformed the class is run through the full
pipeline, exactly as it would be loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	f := dumpCmd.Flags()
	f.StringVar(&dumpServerJar, "server-jar", "", "server jar (default from config)")
	f.StringVarP(&dumpOut, "out", "o", "", "write one .asm file per method (and the class file) to this directory")
	f.StringVarP(&dumpMethod, "method", "m", "", "only methods with this name")
	f.BoolVar(&dumpWoven, "woven", false, "show the woven bodies with injected instructions marked")
	f.BoolVar(&dumpTransformed, "transformed", false, "show the class after the full pipeline")
	f.StringSliceVar(&dumpPatches, "patches", nil, "extra patch declaration files")
	dumpCmd.MarkFlagsMutuallyExclusive("woven", "transformed")
	rootCmd.AddCommand(dumpCmd)
}

// openLoader returns a loader over the server jar and the early plugins.
func openLoader(ctx context.Context, serverJar string) (*loader.Loader, error) {
	ld := loader.New(nil, logger)
	ld.SetDebug(cfg.DebugClassLoader)
	if err := ld.Standard(ctx, orDefault(serverJar, cfg.ServerJar), "", cfg.EarlyPluginsDir); err != nil {
		return nil, err
	}
	return ld, nil
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := patch.InternalName(args[0])

	ld, err := openLoader(ctx, dumpServerJar)
	if err != nil {
		return err
	}
	s, err := openSession(ctx, dumpPatches)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := ld.SetTransformer(s.tr); err != nil {
		return err
	}

	data, err := ld.ClassBytes(ctx, name, dumpTransformed)
	if err != nil {
		return err
	}
	c, err := classfile.Parse(data)
	if err != nil {
		return err
	}
	for _, d := range s.tr.Diags() {
		logger.Warn("transform failed", "diag", d.String())
	}

	var woven map[*classfile.Method]*bytecode.Code
	if dumpWoven {
		if woven, err = s.wovenMethods(c); err != nil {
			return err
		}
	}

	if dumpOut != "" {
		if err := output.WriteClass(dumpOut, c.Name, data); err != nil {
			return err
		}
	}
	w := cmd.OutOrStdout()
	kind := "class"
	if c.Access.IsInterface() {
		kind = "interface"
	}
	fmt.Fprintf(w, "%s%s %s extends %s (version %d)\n", modifiers(c.Access), kind, c.Name, c.SuperName, c.Major)
	for _, m := range c.Methods {
		if dumpMethod != "" && m.Name != dumpMethod {
			continue
		}
		code, ok := woven[m]
		if !ok {
			if code, err = decodeMethod(c, m); err != nil {
				return fmt.Errorf("%s.%s%s: %w", c.Name, m.Name, m.Desc, err)
			}
		}
		if code == nil {
			fmt.Fprintf(w, "\n%s%s%s\n", modifiers(m.Access), m.Name, m.Desc)
			continue
		}
		if dumpOut != "" {
			if err := output.WriteASM(dumpOut, c.Name, m.Name, m.Desc, c.Pool, code, bytecode.InjectedAnnotator); err != nil {
				return err
			}
			continue
		}
		writeMethod(w, c, m, code)
	}
	return nil
}

func writeMethod(w io.Writer, c *classfile.Class, m *classfile.Method, code *bytecode.Code) {
	fmt.Fprintf(w, "\n%s%s%s  stack=%d locals=%d\n", modifiers(m.Access), m.Name, m.Desc, code.MaxStack, code.MaxLocals)
	fmt.Fprint(w, bytecode.Format(c.Pool, code, bytecode.InjectedAnnotator))
}

func modifiers(f classfile.AccessFlags) string {
	var s string
	switch {
	case f.IsPublic():
		s += "public "
	case f.IsPrivate():
		s += "private "
	}
	if f.IsStatic() {
		s += "static "
	}
	if f.IsFinal() {
		s += "final "
	}
	if f.IsAbstract() && !f.IsInterface() {
		s += "abstract "
	}
	if f.IsNative() {
		s += "native "
	}
	return s
}
