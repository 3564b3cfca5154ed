package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command describes the java invocation that starts the server.
type Command struct {
	Java      string
	JVMArgs   []string
	ClassPath []string
	Args      []string
	Dir       string
}

// Argv returns the full argument vector, java first.
func (c *Command) Argv() []string {
	java := c.Java
	if java == "" {
		java = "java"
	}
	argv := []string{java}
	argv = append(argv, c.JVMArgs...)
	if len(c.ClassPath) > 0 {
		argv = append(argv, "-cp", strings.Join(c.ClassPath, string(filepath.ListSeparator)))
	}
	argv = append(argv, MainClass)
	return append(argv, c.Args...)
}

// Run starts java with the process's standard streams and waits for it.
func (c *Command) Run(ctx context.Context) error {
	argv := c.Argv()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("launch: %s: %w", argv[0], err)
	}
	return nil
}
