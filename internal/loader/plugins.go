package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// EarlyPlugins lists the *.jar files directly inside dir, sorted by name.
// A missing directory yields nothing.
func EarlyPlugins(ctx context.Context, fs afs.Service, dir string) ([]string, error) {
	if fs == nil {
		fs = afs.New()
	}
	ok, err := fs.Exists(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", dir, err)
	}
	if !ok {
		return nil, nil
	}
	objects, err := fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("loader: list %s: %w", dir, err)
	}
	var out []string
	for _, obj := range objects {
		if obj.IsDir() || !strings.HasSuffix(strings.ToLower(obj.Name()), ".jar") {
			continue
		}
		out = append(out, url.Path(obj.URL()))
	}
	sort.Strings(out)
	return out, nil
}

// Standard adds the server jar, hyinit's own code source when self is
// set, and every early plugin under pluginsDir, in that order.
func (l *Loader) Standard(ctx context.Context, serverJar, self, pluginsDir string) error {
	if err := l.AddCodeSource(ctx, serverJar, SourceMeta{}); err != nil {
		return err
	}
	if self != "" {
		if err := l.AddCodeSource(ctx, self, SourceMeta{}); err != nil {
			return err
		}
	}
	jars, err := EarlyPlugins(ctx, l.fs, pluginsDir)
	if err != nil {
		return err
	}
	for _, jar := range jars {
		if err := l.AddCodeSource(ctx, jar, SourceMeta{EarlyPlugin: true}); err != nil {
			return err
		}
	}
	return nil
}
