package xmldoc

import "strings"

// Render produces an indented, human-readable dump of a subtree — used
// for the `-x` phase-dump diagnostic, not round-trip XML serialization.
func Render(el *Element) string {
	var b strings.Builder
	renderInto(&b, el, 0)
	return b.String()
}

func renderInto(b *strings.Builder, el *Element, depth int) {
	if el == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteByte('<')
	b.WriteString(el.Tag)
	for _, a := range el.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(a.Value)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if el.Text != "" {
		b.WriteString(el.Text)
	}
	b.WriteByte('\n')
	for _, c := range el.Children {
		renderInto(b, c, depth+1)
	}
}
