package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/pymake-build/pymake/internal/pmerr"
)

// Load reads and parses the XML file at path into a Document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pmerr.IO(path, err)
	}
	return Parse(data, path)
}

// Parse decodes raw XML bytes into a Document, attributing every element to
// path for diagnostics. The root element's tag is returned unchanged (e.g.
// "project", "pyInc", "dicts") — schema validation happens one layer up.
func Parse(data []byte, path string) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var root *Element
	var stack []*Element
	lineAt := lineIndexer(data)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, pmerr.ConfigAt("", path, "XML parse error: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Tag:  t.Name.Local,
				Path: path,
				Line: lineAt(int(dec.InputOffset())),
			}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, pmerr.ConfigAt("", path, "unbalanced XML: unexpected closing tag %q", t.Name.Local)
			}
			stack[len(stack)-1].Text = strings.TrimSpace(stack[len(stack)-1].Text)
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, pmerr.ConfigAt("", path, "empty or malformed XML document")
	}
	return &Document{Root: root, Path: path}, nil
}

// lineIndexer returns a function mapping a byte offset into data to a
// 1-based line number, used to attribute diagnostics to source lines
// since encoding/xml only exposes byte offsets.
func lineIndexer(data []byte) func(offset int) int {
	var lineStarts []int
	lineStarts = append(lineStarts, 0)
	for i, b := range data {
		if b == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return func(offset int) int {
		// binary search for the last lineStart <= offset
		lo, hi := 0, len(lineStarts)-1
		for lo < hi {
			mid := (lo + hi + 1) / 2
			if lineStarts[mid] <= offset {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		return lo + 1
	}
}
