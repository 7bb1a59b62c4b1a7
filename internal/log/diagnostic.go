package log

import (
	"errors"

	"github.com/pymake-build/pymake/internal/pmerr"
)

// Diagnostic renders the single-line failure report the CLI prints on a
// non-zero exit (spec.md §7): the error kind, the offending path/element
// when known, and — for a ChildFailure — the command that failed. A
// *pmerr.Error already carries that structure; Diagnostic just gives it a
// consistent "pymake: " CLI prefix instead of leaving callers to
// fmt.Fprintf ad hoc at each exit point. Errors outside the pmerr taxonomy
// (cobra usage errors, context cancellation) fall back to err.Error().
func Diagnostic(err error) string {
	var pe *pmerr.Error
	if errors.As(err, &pe) {
		return "pymake: " + pe.Error()
	}
	return "pymake: " + err.Error()
}
