package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hyinit/internal/archive"
	"hyinit/internal/classfile"
	"hyinit/internal/verifier"
)

var (
	verifyAll     bool
	verifyPatches []string
)

var verifyCmd = &cobra.Command{
	Use:   "verify [jar]",
	Short: "Type-check class bodies",
	Long: `Verify runs the bytecode verifier over a jar. By default only classes
targeted by a patch are checked, after transformation. With --all every
class in the jar is checked as stored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "verify every class as stored, without weaving")
	verifyCmd.Flags().StringSliceVar(&verifyPatches, "patches", nil, "extra patch declaration files")
	rootCmd.AddCommand(verifyCmd)
}

// hierarchyOf maps every class in jar to its superclass.
func hierarchyOf(jar *archive.Jar) verifier.MapHierarchy {
	h := make(verifier.MapHierarchy)
	for _, name := range jar.Classes() {
		data, err := jar.Class(name)
		if err != nil {
			continue
		}
		c, err := classfile.Parse(data)
		if err != nil || c.SuperName == "" {
			continue
		}
		h[c.Name] = c.SuperName
	}
	return h
}

func runVerify(cmd *cobra.Command, args []string) error {
	jarPath := cfg.ServerJar
	if len(args) == 1 {
		jarPath = args[0]
	}
	jar, err := archive.Open(jarPath)
	if err != nil {
		return err
	}

	classes := jar.Classes()
	load := func(name string) ([]byte, error) { return jar.Class(name) }
	if !verifyAll {
		s, err := openSession(cmd.Context(), verifyPatches)
		if err != nil {
			return err
		}
		defer s.Close()
		classes = s.reg.Classes()
		load = func(name string) ([]byte, error) {
			in, err := jar.Class(name)
			if err != nil {
				return nil, err
			}
			return s.tr.TransformClass(name, in)
		}
	}
	hier := hierarchyOf(jar)

	var (
		mu       sync.Mutex
		failures []string
		methods  int
	)
	fail := func(format string, args ...any) {
		mu.Lock()
		failures = append(failures, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.WorkerCount())
	for _, name := range classes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := load(name)
			if err != nil {
				fail("%s: %v", name, err)
				return nil
			}
			c, err := classfile.Parse(data)
			if err != nil {
				fail("%s: %v", name, err)
				return nil
			}
			if err := verifier.CheckPool(c); err != nil {
				fail("%s: %v", name, err)
			}
			n := 0
			for _, m := range c.Methods {
				code, err := decodeMethod(c, m)
				if err != nil {
					fail("%s.%s%s: %v", name, m.Name, m.Desc, err)
					continue
				}
				if code == nil {
					continue
				}
				n++
				if _, err := verifier.Verify(c, m, code, verifier.Options{Hierarchy: hier}); err != nil {
					fail("%v", err)
				}
			}
			mu.Lock()
			methods += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Strings(failures)
	w := cmd.OutOrStdout()
	for _, f := range failures {
		fmt.Fprintln(w, f)
	}
	fmt.Fprintf(w, "%d class(es), %d method(s), %d failure(s)\n", len(classes), methods, len(failures))
	if len(failures) > 0 {
		return fmt.Errorf("verification failed")
	}
	return nil
}
