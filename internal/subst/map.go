// Package subst implements the SubstitutionMap and the `if` guard
// evaluator described in spec.md §3 and §4.1: a two-layer key/value map
// (a sealed base fed by the CLI and the synthesized keys, and a growable
// layer fed by -i dictionary files and by <dict> elements) plus
// {key} token expansion and the ;and;/;or; boolean guard grammar.
package subst

import (
	"strings"

	"github.com/pymake-build/pymake/internal/pmerr"
)

// Map is the substitution map. The sealed layer holds the entries given to
// New (the command-line -s values) plus the keys added with Seal ({config},
// {ccprefix}); the growable layer holds keys added with TryAdd (-i
// dictionary-file entries and <dict> elements). Lookup probes growable
// first, then sealed; TryAdd silently drops an insert whose key is already
// bound in either layer (spec.md §9, "Sealed CLI keys").
type Map struct {
	sealed   map[string]string
	growable map[string]string
}

// New builds a Map with the given sealed entries. Sealed entries are
// immutable for the remainder of the run.
func New(sealed map[string]string) *Map {
	m := &Map{
		sealed:   make(map[string]string, len(sealed)),
		growable: make(map[string]string),
	}
	for k, v := range sealed {
		m.sealed[k] = v
	}
	return m
}

// Get returns the value bound to key and whether it is bound at all.
func (m *Map) Get(key string) (string, bool) {
	if v, ok := m.growable[key]; ok {
		return v, true
	}
	if v, ok := m.sealed[key]; ok {
		return v, true
	}
	return "", false
}

// TryAdd adds key=value to the growable layer. It is a no-op, returning
// false, when the key is already bound anywhere (sealed or growable) —
// the first writer wins, matching §4.1's include-time <dict> rule and
// generalizing it to every <dict> encountered during traversal.
func (m *Map) TryAdd(key, value string) bool {
	if _, ok := m.sealed[key]; ok {
		return false
	}
	if _, ok := m.growable[key]; ok {
		return false
	}
	m.growable[key] = value
	return true
}

// Seal moves an entry directly into the sealed layer, used for the two
// synthesized keys ({config} after CLI seeding, {ccprefix} after toolchain
// selection) that must never be shadowed by document-supplied <dict>
// entries even though they aren't part of the original CLI/-i seed.
func (m *Map) Seal(key, value string) {
	delete(m.growable, key)
	m.sealed[key] = value
}

// Expand resolves every {key} token in s against the map. An unknown key
// or an unbalanced brace is a SubstitutionError citing element (which may
// be empty when the caller has no better locator).
func (m *Map) Expand(s, element string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '{' {
			out.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			return "", pmerr.Substitution(element, "unbalanced brace in %q", s)
		}
		key := s[i+1 : i+1+end]
		if strings.ContainsAny(key, "{}") {
			return "", pmerr.Substitution(element, "unbalanced brace in %q", s)
		}
		val, ok := m.Get(key)
		if !ok {
			return "", pmerr.Substitution(element, "unknown key %q in %q", key, s)
		}
		out.WriteString(val)
		i += 1 + end + 1
	}
	return out.String(), nil
}

// IsFixedPoint reports whether expanding s again would leave it unchanged,
// i.e. s contains no residual {key} tokens. Used to check the "Substitution
// is a fixed point" invariant in tests (spec.md §8).
func IsFixedPoint(s string) bool {
	return !strings.Contains(s, "{") && !strings.Contains(s, "}")
}
