package ui

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a malformed hierarchy dump, naming the node where
// parsing failed.
type ParseError struct {
	Path string // node path, e.g. "/hierarchy/node[0]/node[2]"
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse hierarchy dump: %s", e.Msg)
	}
	return fmt.Sprintf("parse hierarchy dump at %s: %s", e.Path, e.Msg)
}

// ParseOptions controls which elements a parse emits.
type ParseOptions struct {
	// IncludeInvisible keeps elements whose displayed attribute is
	// false. Sibling Index and Path always reflect the underlying
	// tree, so filtering never renumbers elements.
	IncludeInvisible bool
}

var boundsPattern = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// parseBounds parses the "[left,top][right,bottom]" attribute format.
// Inverted rectangles are normalized so Left<=Right and Top<=Bottom.
func parseBounds(s string) (Bounds, error) {
	match := boundsPattern.FindStringSubmatch(s)
	if match == nil {
		return Bounds{}, fmt.Errorf("malformed bounds %q", s)
	}
	coords := make([]int, 4)
	for i, g := range match[1:] {
		v, err := strconv.Atoi(g)
		if err != nil {
			return Bounds{}, fmt.Errorf("malformed bounds %q: %v", s, err)
		}
		coords[i] = v
	}
	b := Bounds{Left: coords[0], Top: coords[1], Right: coords[2], Bottom: coords[3]}
	if b.Left > b.Right {
		b.Left, b.Right = b.Right, b.Left
	}
	if b.Top > b.Bottom {
		b.Top, b.Bottom = b.Bottom, b.Top
	}
	return b, nil
}

// frame is one level of the open-element stack during parsing.
type frame struct {
	path     []int
	children int
}

// Parse converts a raw uiautomator dump into a Snapshot. The returned
// element sequence is depth-first in document order. Parsing the same
// text twice yields element-for-element identical snapshots.
//
// A node whose bounds attribute is present but malformed fails the
// whole parse with a *ParseError naming that node; a missing bounds
// attribute defaults to the zero rectangle, and other missing optional
// attributes default to empty or false (enabled and displayed default
// to true, matching uiautomator's output).
func Parse(raw string, opts ParseOptions) (*Snapshot, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ParseError{Msg: "empty dump"}
	}
	if !strings.HasPrefix(trimmed, "<") {
		return nil, &ParseError{Msg: fmt.Sprintf("dump does not start with an XML tag: %.40q", trimmed)}
	}

	decoder := xml.NewDecoder(strings.NewReader(trimmed))
	snap := &Snapshot{CapturedAt: time.Now()}

	// Stack of open elements. The synthetic root frame numbers the
	// top-level nodes under <hierarchy>.
	stack := []*frame{{}}
	sawAny := false
	first := true

	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			top := stack[len(stack)-1]
			return nil, &ParseError{Path: nodePath(top.path), Msg: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawAny = true
			if first {
				first = false
				// A <hierarchy> wrapper is the document container,
				// not an element. Dumps of a bare subtree start with
				// a node directly.
				if t.Name.Local == "hierarchy" {
					continue
				}
			}
			parent := stack[len(stack)-1]
			idx := parent.children
			parent.children++

			path := make([]int, len(parent.path)+1)
			copy(path, parent.path)
			path[len(parent.path)] = idx

			el, err := parseNode(t, path, idx, len(path)-1)
			if err != nil {
				return nil, &ParseError{Path: nodePath(path), Msg: err.Error()}
			}
			if el.Displayed || opts.IncludeInvisible {
				snap.Elements = append(snap.Elements, el)
			}
			stack = append(stack, &frame{path: path})

		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			_ = t
		}
	}

	if !sawAny {
		return nil, &ParseError{Msg: "no root element found"}
	}
	return snap, nil
}

// parseNode converts one start element into an Element.
func parseNode(start xml.StartElement, path []int, index, depth int) (Element, error) {
	attrs := make(map[string]string, len(start.Attr))
	for _, a := range start.Attr {
		attrs[a.Name.Local] = a.Value
	}

	bounds := Bounds{}
	if s, ok := attrs["bounds"]; ok {
		var err error
		bounds, err = parseBounds(s)
		if err != nil {
			return Element{}, err
		}
	}

	el := Element{
		Class:       attrs["class"],
		ResourceID:  attrs["resource-id"],
		Text:        attrs["text"],
		ContentDesc: attrs["content-desc"],
		Bounds:      bounds,
		Center: Point{
			X: (bounds.Left + bounds.Right) / 2,
			Y: (bounds.Top + bounds.Bottom) / 2,
		},
		Clickable:  boolAttr(attrs, "clickable", false),
		Enabled:    boolAttr(attrs, "enabled", true),
		Focused:    boolAttr(attrs, "focused", false),
		Selected:   boolAttr(attrs, "selected", false),
		Checkable:  boolAttr(attrs, "checkable", false),
		Checked:    boolAttr(attrs, "checked", false),
		Scrollable: boolAttr(attrs, "scrollable", false),
		Password:   boolAttr(attrs, "password", false),
		Displayed:  boolAttr(attrs, "displayed", true),
		Index:      index,
		Depth:      depth,
		Path:       path,
	}
	if el.Class == "" {
		el.Class = start.Name.Local
	}
	return el, nil
}

func boolAttr(attrs map[string]string, name string, def bool) bool {
	v, ok := attrs[name]
	if !ok {
		return def
	}
	return strings.EqualFold(v, "true")
}
