package launch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"hyinit/internal/archive"
	"hyinit/internal/logging"
	"hyinit/internal/patch"
	"hyinit/internal/pipeline"
)

// Report summarizes one jar weave.
type Report struct {
	Session string          `json:"session"`
	Jar     string          `json:"jar"`
	Woven   []string        `json:"woven"`
	Missing []string        `json:"missing,omitempty"`
	Diags   []pipeline.Diag `json:"diagnostics,omitempty"`
	Stats   pipeline.Stats  `json:"stats"`
}

// WeaveJar runs every targeted class of jar through t using up to workers
// goroutines and stores the changed classes back into jar. Classes whose
// transformation failed keep their original bytes and show up in the
// report's diagnostics.
func WeaveJar(ctx context.Context, jar *archive.Jar, reg *patch.Registry, t *pipeline.Transformer, workers int, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = logging.Discard()
	}
	if workers < 1 {
		workers = 1
	}
	rep := &Report{Session: t.Session(), Jar: jar.Path}

	type job struct {
		name string
		in   []byte
		out  []byte
	}
	var jobs []*job
	for _, name := range reg.Classes() {
		data, err := jar.Class(name)
		if err != nil {
			rep.Missing = append(rep.Missing, name)
			log.Warn("patched class not in jar", "class", name, "jar", jar.Path)
			continue
		}
		jobs = append(jobs, &job{name: name, in: data})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			j.out = t.Transform(j.name, j.in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("launch: weave %s: %w", jar.Path, err)
	}

	for _, j := range jobs {
		if bytes.Equal(j.out, j.in) {
			continue
		}
		jar.Put(archive.ClassFile(j.name), j.out)
		rep.Woven = append(rep.Woven, j.name)
	}
	sort.Strings(rep.Woven)
	rep.Diags = t.Diags()
	rep.Stats = t.Stats()
	log.Info("woven", "jar", jar.Path, "classes", len(rep.Woven), "diagnostics", len(rep.Diags))
	return rep, nil
}
