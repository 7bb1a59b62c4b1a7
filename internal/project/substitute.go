package project

import (
	"github.com/pymake-build/pymake/internal/subst"
	"github.com/pymake-build/pymake/internal/xmldoc"
)

// deferredTextTags names elements whose text content may reference
// {ccprefix}, unavailable until Phase P3. Their text is left raw here and
// expanded later, once the toolchain is selected (spec.md §4.1 P3, §9
// "{ccprefix} timing").
var deferredTextTags = map[string]bool{
	"pre_op":  true,
	"post_op": true,
}

// substituteAndGuard performs Phase P2: a single top-down traversal
// expanding {key} tokens in every attribute and (non-deferred) text node,
// folding <dict> elements into m as they're encountered, and pruning any
// element whose `if` guard resolves false.
func substituteAndGuard(m *subst.Map, el *xmldoc.Element) error {
	for i := range el.Attrs {
		v, err := m.Expand(el.Attrs[i].Value, el.Tag)
		if err != nil {
			return err
		}
		el.Attrs[i].Value = v
	}
	if el.Text != "" && !deferredTextTags[el.Tag] {
		v, err := m.Expand(el.Text, el.Tag)
		if err != nil {
			return err
		}
		el.Text = v
	}

	kept := el.Children[:0:0]
	for _, child := range el.Children {
		if child.Tag == "dict" {
			if err := substituteAndGuard(m, child); err != nil {
				return err
			}
			key, _ := child.Attr("key")
			m.TryAdd(key, child.Text)
			kept = append(kept, child)
			continue
		}

		if err := substituteAndGuard(m, child); err != nil {
			return err
		}

		if ifVal, hasIf := child.If(); hasIf {
			ok, err := subst.EvaluateGuard(ifVal, child.Locator())
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		kept = append(kept, child)
	}
	el.Children = kept
	return nil
}
