package project

import (
	"path/filepath"

	"github.com/pymake-build/pymake/internal/pmerr"
	"github.com/pymake-build/pymake/internal/subst"
	"github.com/pymake-build/pymake/internal/xmldoc"
)

// expandIncludes walks el's children in document order (Phase P1). Every
// <dict> found is folded into m immediately, so a sibling <include>'s `if`
// guard can reference a key it introduced. Every <include> whose guard
// resolves true is replaced in place by the children of the referenced
// file, recursively expanded first so nested includes are already
// resolved by the time they're spliced into el.
func expandIncludes(m *subst.Map, el *xmldoc.Element, chain map[string]bool) error {
	i := 0
	for i < len(el.Children) {
		child := el.Children[i]
		switch child.Tag {
		case "dict":
			key, ok := child.Attr("key")
			if !ok {
				return pmerr.ConfigAt(child.Locator(), child.Path, "<dict> missing required key attribute")
			}
			val, err := m.Expand(child.Text, child.Locator())
			if err != nil {
				return err
			}
			m.TryAdd(key, val)
			i++

		case "include":
			include := true
			if ifAttr, hasIf := child.If(); hasIf {
				expanded, err := m.Expand(ifAttr, child.Locator())
				if err != nil {
					return err
				}
				include, err = subst.EvaluateGuard(expanded, child.Locator())
				if err != nil {
					return err
				}
			}
			if !include {
				el.Children = append(el.Children[:i], el.Children[i+1:]...)
				continue
			}

			pathAttr, ok := child.Attr("path")
			if !ok {
				return pmerr.ConfigAt(child.Locator(), child.Path, "<include> missing required path attribute")
			}
			expandedPath, err := m.Expand(pathAttr, child.Locator())
			if err != nil {
				return err
			}
			incPath := expandedPath
			if !filepath.IsAbs(incPath) {
				incPath = filepath.Join(filepath.Dir(child.Path), incPath)
			}
			absPath, err := filepath.Abs(incPath)
			if err != nil {
				return pmerr.IO(incPath, err)
			}
			if chain[absPath] {
				return pmerr.Config("include cycle detected: %s -> %s", child.Path, absPath)
			}

			doc, err := xmldoc.Load(absPath)
			if err != nil {
				return err
			}
			if doc.Root.Tag != "pyInc" {
				return pmerr.ConfigAt(doc.Root.Locator(), absPath, "include file root must be <pyInc>, found <%s>", doc.Root.Tag)
			}

			chain[absPath] = true
			if err := expandIncludes(m, doc.Root, chain); err != nil {
				return err
			}
			delete(chain, absPath)

			spliced := doc.Root.Children
			merged := make([]*xmldoc.Element, 0, len(el.Children)-1+len(spliced))
			merged = append(merged, el.Children[:i]...)
			merged = append(merged, spliced...)
			merged = append(merged, el.Children[i+1:]...)
			el.Children = merged
			i += len(spliced)

		default:
			if err := expandIncludes(m, child, chain); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}
