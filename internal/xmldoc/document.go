// Package xmldoc implements the in-memory tree that backs a project
// document: an ordered tree of elements with attributes, text, and
// source-location metadata, as required by the configuration resolver's
// include-splicing and substitution passes (spec.md §3, §4.1).
package xmldoc

import "strconv"

// Attr is a single attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the document tree. Children are kept in document
// order because flag aggregation and compile-command ordering are observable
// (spec.md §9, "Document order as contract").
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Element

	// Path is the absolute path of the file this element was parsed from,
	// and Line its 1-based line number — used to locate diagnostics.
	Path string
	Line int
}

// Document is the root of a parsed project/include/dicts file.
type Document struct {
	Root *Element
	Path string
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// If returns the element's `if` guard attribute, if any.
func (e *Element) If() (string, bool) {
	return e.Attr("if")
}

// ChildrenByTag returns the element's direct children with the given tag,
// in document order.
func (e *Element) ChildrenByTag(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildByTag returns the first direct child with the given tag, if any.
func (e *Element) FirstChildByTag(tag string) (*Element, bool) {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c, true
		}
	}
	return nil, false
}

// Locator renders a short "tag@path:line" string for diagnostics.
func (e *Element) Locator() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return e.Tag + "@" + e.Path + ":" + strconv.Itoa(e.Line)
	}
	return e.Tag + "@" + e.Path
}
