package render

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"hyinit/internal/patch"
)

func strategyColor(s patch.Strategy, t Theme) string {
	switch s {
	case patch.Replace:
		return t.StrategyReplace
	case patch.WrapBefore, patch.WrapAfter:
		return t.StrategyWrap
	case patch.RedirectCall:
		return t.StrategyRedirect
	}
	return t.StrategyInject
}

// PatchDOT renders a patch set: one cluster per target class holding its
// patched methods, one node per patch with an edge to the method it
// changes. Patch nodes are ordered by application order.
func PatchDOT(patches []*patch.Patch, title string, t Theme) string {
	ps := slices.Clone(patches)
	slices.SortStableFunc(ps, patch.Compare)

	methods := make(map[string][]string)
	for _, p := range ps {
		m := p.Target.Method + p.Target.Desc
		if !slices.Contains(methods[p.Target.Class], m) {
			methods[p.Target.Class] = append(methods[p.Target.Class], m)
		}
	}
	classes := make([]string, 0, len(methods))
	for c := range methods {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	var b strings.Builder
	b.WriteString("digraph patches {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  nodesep=0.25;\n")
	b.WriteString("  ranksep=0.8;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica\", fontsize=9, fontcolor=%q];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.8, arrowsize=0.5, arrowhead=vee];\n")
	fmt.Fprintf(&b, "  labelloc=t;\n  labeljust=l;\n")
	fmt.Fprintf(&b, "  label=<<font point-size=\"10\" color=\"%s\">%s</font>>;\n", t.TextColor, dotEscape(title))
	b.WriteByte('\n')

	for i, c := range classes {
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&b, "    color=%q;\n", t.ClusterBorder)
		fmt.Fprintf(&b, "    label=<<font point-size=\"9\" color=\"%s\">%s</font>>;\n", t.ClusterLabel, dotEscape(c))
		for _, m := range methods[c] {
			fmt.Fprintf(&b, "    %s [label=<%s>, shape=box, fontname=\"Courier,monospace\", fontsize=8];\n",
				dotID(c+"."+m), dotEscape(truncLabel(m, 60)))
		}
		b.WriteString("  }\n")
	}
	b.WriteByte('\n')

	for _, p := range ps {
		color := strategyColor(p.Strategy, t)
		detail := string(p.Strategy)
		if p.Anchor.Kind == patch.AtInvoke || p.Anchor.Kind == patch.AtIndex {
			detail += " @ " + p.Anchor.String()
		}
		fmt.Fprintf(&b, "  %s [label=<%s<br/><font point-size=\"7\" color=\"%s\">%s p=%d</font>>, color=%q, shape=note];\n",
			dotID("patch:"+p.ID), dotEscape(p.ID), color, dotEscape(truncLabel(detail, 70)), p.Priority, color)
		fmt.Fprintf(&b, "  %s -> %s [color=%q];\n",
			dotID("patch:"+p.ID), dotID(p.Target.Class+"."+p.Target.Method+p.Target.Desc), color)
	}

	b.WriteString("}\n")
	return b.String()
}
