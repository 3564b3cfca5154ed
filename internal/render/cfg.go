package render

import (
	"fmt"
	"strings"

	"hyinit/internal/bytecode"
	"hyinit/internal/classfile"
)

// CFGDOT renders one method as a graph of basic blocks. The entry block
// is outlined, injected instructions carry a "+" and their blocks are
// filled, exception handlers are dashed.
func CFGDOT(cfg bytecode.MethodCFG, pool *classfile.Pool, t Theme) string {
	if len(cfg.Blocks) == 0 || cfg.Code == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("digraph cfg {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  nodesep=0.3;\n")
	b.WriteString("  ranksep=0.4;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Courier,monospace\", fontsize=8, fontcolor=%q, margin=\"0.08,0.04\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.7, arrowsize=0.5, arrowhead=vee];\n")
	fmt.Fprintf(&b, "  labelloc=t;\n  labeljust=l;\n")
	fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"9\" color=\"%s\">%s</font>>;\n",
		t.TextColor, dotEscape(cfg.Name))
	b.WriteByte('\n')

	insts := cfg.Code.Insts
	for _, blk := range cfg.Blocks {
		id := fmt.Sprintf("bb%d", blk.ID)

		var lines []string
		injected := false
		end := min(blk.End, len(insts))
		for i := blk.Start; i < end; i++ {
			in := &insts[i]
			mark := " "
			if in.Origin < 0 {
				mark = "+"
				injected = true
			}
			line := fmt.Sprintf("%s%4d: %s", mark, i, truncLabel(bytecode.Operands(pool, in), 80))
			lines = append(lines, dotEscape(line))
		}
		// Truncate long blocks.
		if len(lines) > 12 {
			kept := append(lines[:5], fmt.Sprintf("... (%d more)", len(lines)-10))
			lines = append(kept, lines[len(lines)-5:]...)
		}

		label := strings.Join(lines, "<br align=\"left\"/>")
		label += "<br align=\"left\"/>"

		attrs := ""
		if blk.IsEntry {
			attrs = fmt.Sprintf(", penwidth=1.5, color=%q", t.EdgeTaken)
		}
		switch {
		case injected:
			attrs += fmt.Sprintf(", fillcolor=%q", t.InjectedFill)
		case blk.IsTerm:
			attrs += fmt.Sprintf(", fillcolor=%q", t.TermFill)
		}
		if blk.IsHandler {
			attrs += ", style=\"filled,dashed\""
		}
		fmt.Fprintf(&b, "  %s [label=<%s>%s];\n", id, label, attrs)
	}
	b.WriteByte('\n')

	for _, blk := range cfg.Blocks {
		for _, s := range blk.Succs {
			fmt.Fprintf(&b, "  bb%d -> bb%d [%s];\n", blk.ID, s.BlockID, edgeAttrs(s.Cond, t))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// edgeAttrs styles a successor edge by its condition.
func edgeAttrs(cond string, t Theme) string {
	switch cond {
	case "T":
		return fmt.Sprintf("color=%q, label=<<font point-size=\"7\" color=\"%s\">T</font>>", t.EdgeTaken, t.EdgeTaken)
	case "F":
		return fmt.Sprintf("color=%q, label=<<font point-size=\"7\" color=\"%s\">F</font>>", t.EdgeFallthrough, t.EdgeFallthrough)
	case "case", "default":
		return fmt.Sprintf("color=%q, style=dashed", t.EdgeSwitch)
	case "catch":
		return fmt.Sprintf("color=%q, style=dotted", t.EdgeCatch)
	}
	return fmt.Sprintf("color=%q", t.EdgeDirect)
}
