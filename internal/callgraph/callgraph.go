// Package callgraph maps class methods onto lattice call graphs and CFGs.
package callgraph

import (
	"github.com/zboralski/lattice"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
	"hyinit/internal/patch"
)

// MethodInfo holds the data needed to build the call graph and CFG for one
// method.
type MethodInfo struct {
	Class string
	Name  string
	Desc  string
	Code  *bytecode.Code
	Pool  *classfile.Pool
}

// ID returns "Class.name(desc)", the node name used in every graph.
func (m MethodInfo) ID() string { return m.Class + "." + m.Name + m.Desc }

// Methods decodes every method of c that has a body. Methods whose code
// does not decode are skipped.
func Methods(c *classfile.Class) []MethodInfo {
	var out []MethodInfo
	for _, m := range c.Methods {
		attr, err := c.Code(m)
		if err != nil {
			continue
		}
		code, err := bytecode.DecodeCode(c, attr)
		if err != nil {
			continue
		}
		out = append(out, MethodInfo{Class: c.Name, Name: m.Name, Desc: m.Desc, Code: code, Pool: c.Pool})
	}
	return out
}

// callee names the member an invoke calls, or "" for invokedynamic and
// unresolvable references.
func callee(pool *classfile.Pool, in *bytecode.Instruction) string {
	if !in.Op.IsInvoke() || in.Op == bytecode.OpInvokedynamic {
		return ""
	}
	ref, err := pool.Member(in.Index)
	if err != nil {
		return ""
	}
	return ref.Owner + "." + ref.Name + ref.Desc
}

// BuildCallGraph constructs a lattice.Graph from decoded methods. Each
// method becomes a node and each resolved invoke an edge.
func BuildCallGraph(methods []MethodInfo) *lattice.Graph {
	g := &lattice.Graph{}
	for _, m := range methods {
		id := m.ID()
		g.Nodes = append(g.Nodes, id)
		for i := range m.Code.Insts {
			if c := callee(m.Pool, &m.Code.Insts[i]); c != "" {
				g.Edges = append(g.Edges, lattice.Edge{Caller: id, Callee: c})
			}
		}
	}
	g.Dedup()
	return g
}

// BuildPatchGraph links every patch source to the methods its patches
// target, and every redirect or call-site anchor to the member it matches.
func BuildPatchGraph(patches []*patch.Patch) *lattice.Graph {
	g := &lattice.Graph{}
	nodes := make(map[string]bool)
	edges := make(map[[2]string]bool)
	node := func(n string) {
		if !nodes[n] {
			nodes[n] = true
			g.Nodes = append(g.Nodes, n)
		}
	}
	edge := func(from, to string) {
		if !edges[[2]string{from, to}] {
			edges[[2]string{from, to}] = true
			g.Edges = append(g.Edges, lattice.Edge{Caller: from, Callee: to})
		}
	}
	for _, p := range patches {
		src := p.Source
		if src == "" {
			src = "(anonymous)"
		}
		target := p.Target.String()
		node(src)
		node(target)
		edge(src, target)
		if p.Anchor.Kind == patch.AtInvoke {
			edge(target, p.Anchor.Invoke.String())
		}
	}
	return g
}
