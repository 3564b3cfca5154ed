// Package render produces Graphviz DOT for woven methods and patch sets.
package render

import (
	"strings"
	"unicode/utf8"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// dotEscape escapes s for an HTML-like label. Method names such as <init>
// and generic signatures need it.
func dotEscape(s string) string { return htmlEscaper.Replace(s) }

var idEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotID quotes a JVM name as a DOT node ID. Quoted IDs keep slashes, dollars
// and angle brackets as written, so t/W$1.<init>()V stays readable in the
// emitted graph and distinct names never collide.
func dotID(name string) string { return `"` + idEscaper.Replace(name) + `"` }

// truncLabel cuts s to at most n runes, marking the cut with an ellipsis.
func truncLabel(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	keep := n - 1
	for i := range s {
		if keep == 0 {
			return s[:i] + "…"
		}
		keep--
	}
	return s
}
