package project

import (
	"strings"

	"github.com/pymake-build/pymake/internal/pmerr"
	"github.com/pymake-build/pymake/internal/xmldoc"
)

// LoadDictFile reads a `-i` dictionary file (spec.md §4.1 P0): root must be
// <dicts>, every child must be <dict key="…">. Values are taken verbatim,
// with no {key} substitution of their own — they seed the sealed layer.
func LoadDictFile(path string) (map[string]string, error) {
	doc, err := xmldoc.Load(path)
	if err != nil {
		return nil, err
	}
	if doc.Root.Tag != "dicts" {
		return nil, pmerr.ConfigAt(doc.Root.Locator(), path, "dictionary file root must be <dicts>, found <%s>", doc.Root.Tag)
	}
	out := make(map[string]string, len(doc.Root.Children))
	for _, child := range doc.Root.Children {
		if child.Tag != "dict" {
			return nil, pmerr.ConfigAt(child.Locator(), path, "<dicts> may only contain <dict> children, found <%s>", child.Tag)
		}
		key, ok := child.Attr("key")
		if !ok {
			return nil, pmerr.ConfigAt(child.Locator(), path, "<dict> missing required key attribute")
		}
		out[key] = strings.TrimSpace(child.Text)
	}
	return out, nil
}

// ParseInlineSubs accepts the -s flag's two accepted forms: a repeated
// single "KEY:VAL" pair, or one string of ";"-separated "KEY:VAL" pairs.
// Later entries win over earlier ones with the same key (CLI-internal
// override order), and the whole result is sealed ahead of <dict>-sourced
// values per spec.md §4.1 P0.
func ParseInlineSubs(raw []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, entry := range raw {
		for _, pair := range strings.Split(entry, ";") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			k, v, ok := strings.Cut(pair, ":")
			if !ok {
				return nil, pmerr.Usage("malformed -s entry %q, expected KEY:VAL", pair)
			}
			out[k] = v
		}
	}
	return out, nil
}
