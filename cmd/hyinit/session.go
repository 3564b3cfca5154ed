package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hyinit/internal/builtin"
	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
	"hyinit/internal/pipeline"
	"hyinit/internal/planner"
	"hyinit/internal/store"
	"hyinit/internal/weaver"
)

// session is a frozen registry plus the transformer built over it.
type session struct {
	reg       *patch.Registry
	collected *patch.Collected
	tr        *pipeline.Transformer
	cache     *store.Store
}

// openSession registers the built-in patches, everything found in the
// early plugins directory and any extra declaration files, then freezes
// the registry.
func openSession(ctx context.Context, extra []string) (*session, error) {
	reg := patch.NewRegistry()
	if cfg.Builtins {
		if err := builtin.Register(reg); err != nil {
			return nil, err
		}
	}

	collected, err := patch.NewCollector(nil).Collect(ctx, cfg.EarlyPluginsDir)
	if err != nil {
		return nil, err
	}
	for _, w := range collected.Warnings {
		logger.Warn(w)
	}
	for _, name := range collected.Names {
		logger.Info("found patch file", "file", name, "origin", collected.Origins[name])
	}
	if _, err := collected.Register(reg); err != nil {
		return nil, err
	}

	for _, path := range extra {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f, err := patch.ParseFile(filepath.Base(path), data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, err := f.RegisterAll(reg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	reg.Freeze()
	logger.Info("patches registered", "patches", reg.Len(), "classes", len(reg.Classes()))

	s := &session{reg: reg, collected: collected}
	opts := cfg.PipelineOptions(logger)
	if cfg.CacheDB != "" {
		st, err := store.Open(cfg.CacheDB)
		if err != nil {
			return nil, err
		}
		s.cache = st
		opts.Cache = st
	}
	s.tr = pipeline.New(reg, opts)
	if s.cache != nil {
		s.cache.WithSession(s.tr.Session())
	}
	return s, nil
}

func (s *session) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// wovenMethods weaves every planned method of c without verifying or
// committing, so the result still carries injection markers.
func (s *session) wovenMethods(c *classfile.Class) (map[*classfile.Method]*bytecode.Code, error) {
	policy, err := planner.ParsePolicy(cfg.Conflicts)
	if err != nil {
		return nil, err
	}
	cp, err := planner.ForClass(s.reg, c.Name, policy)
	if err != nil {
		return nil, err
	}
	out := make(map[*classfile.Method]*bytecode.Code)
	for _, plan := range cp.Plans {
		m := c.FindMethod(plan.Target.Method, plan.Target.Desc)
		if m == nil {
			return nil, fmt.Errorf("%s: method not found", plan.Target)
		}
		res, err := weaver.WeaveMethod(c, m, plan, weaver.Options{ComputeMaxs: cfg.ComputeMaxs})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", plan.Target, err)
		}
		out[m] = res.Code
	}
	return out, nil
}

// decodeMethod returns m's body, or nil for abstract and native methods.
func decodeMethod(c *classfile.Class, m *classfile.Method) (*bytecode.Code, error) {
	attr, err := c.Code(m)
	if errors.Is(err, classfile.ErrNoCode) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return bytecode.DecodeCode(c, attr)
}
