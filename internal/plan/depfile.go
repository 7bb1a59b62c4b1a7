// Package plan implements the incremental engine and command composer
// (spec.md §4.2, §4.3): deciding which sources are stale against their
// header-dependency files, and building the exact compile/link/archive
// argv for each action.
package plan

import (
	"strings"
)

// ParseDepFile parses the Makefile-style dependency rule emitted by the
// compiler's -MMD/-MF-equivalent flag (spec.md §6.3): a single rule
// "target: prereq1 prereq2 \" with backslash line continuations. Returns
// the prerequisite (header) paths, the target itself excluded.
func ParseDepFile(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\\\n", " ")
	text = strings.ReplaceAll(text, "\\\r\n", " ")

	_, rhs, found := strings.Cut(text, ":")
	if !found {
		return nil
	}

	var out []string
	for _, f := range strings.Fields(rhs) {
		out = append(out, f)
	}
	return out
}
