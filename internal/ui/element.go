// Package ui parses uiautomator hierarchy dumps into element snapshots
// and resolves search criteria against them.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
)

// Point is a pixel coordinate on screen.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Bounds is an element rectangle in screen pixels. Left <= Right and
// Top <= Bottom always hold for parsed elements.
type Bounds struct {
	Left   int `yaml:"left"   json:"left"`
	Top    int `yaml:"top"    json:"top"`
	Right  int `yaml:"right"  json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// Width returns the rectangle width.
func (b Bounds) Width() int { return b.Right - b.Left }

// Height returns the rectangle height.
func (b Bounds) Height() int { return b.Bottom - b.Top }

// Contains reports whether the point lies within the rectangle,
// boundaries included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.Left, b.Top, b.Right, b.Bottom)
}

// Element is one node of a parsed hierarchy dump. Elements are value
// objects: identity is the Path within one Snapshot, and a new Snapshot
// invalidates all prior elements.
type Element struct {
	Class       string `yaml:"class"                  json:"class"`
	ResourceID  string `yaml:"resource_id,omitempty"  json:"resource_id,omitempty"`
	Text        string `yaml:"text,omitempty"         json:"text,omitempty"`
	ContentDesc string `yaml:"content_desc,omitempty" json:"content_desc,omitempty"`
	Bounds      Bounds `yaml:"bounds"                 json:"bounds"`
	Center      Point  `yaml:"center"                 json:"center"`
	Clickable   bool   `yaml:"clickable,omitempty"    json:"clickable,omitempty"`
	Enabled     bool   `yaml:"enabled"                json:"enabled"`
	Focused     bool   `yaml:"focused,omitempty"      json:"focused,omitempty"`
	Selected    bool   `yaml:"selected,omitempty"     json:"selected,omitempty"`
	Checkable   bool   `yaml:"checkable,omitempty"    json:"checkable,omitempty"`
	Checked     bool   `yaml:"checked,omitempty"      json:"checked,omitempty"`
	Scrollable  bool   `yaml:"scrollable,omitempty"   json:"scrollable,omitempty"`
	Password    bool   `yaml:"password,omitempty"     json:"password,omitempty"`
	Displayed   bool   `yaml:"displayed"              json:"displayed"`

	// Index is the element's position among its siblings in the
	// underlying tree, counted before any visibility filtering.
	Index int `yaml:"index" json:"index"`
	// Depth is the distance from the root node.
	Depth int `yaml:"depth" json:"depth"`
	// Path is the sequence of sibling indices from the root.
	Path []int `yaml:"path" json:"path"`
}

// PathString renders the element's position as a node path, e.g.
// "/hierarchy/node[0]/node[2]".
func (e Element) PathString() string {
	return nodePath(e.Path)
}

func nodePath(path []int) string {
	var b strings.Builder
	b.WriteString("/hierarchy")
	for _, idx := range path {
		fmt.Fprintf(&b, "/node[%d]", idx)
	}
	return b.String()
}

// Snapshot is one immutable capture of the on-screen hierarchy:
// elements in depth-first document order plus the screen dimensions.
// Snapshots are never cached; each inspection produces a fresh one.
type Snapshot struct {
	Elements   []Element `yaml:"elements"    json:"elements"`
	ScreenSize adb.Size  `yaml:"screen_size" json:"screen_size"`
	CapturedAt time.Time `yaml:"captured_at" json:"captured_at"`
}

// Stats summarizes a snapshot for command output.
type Stats struct {
	TotalElements     int `yaml:"total_elements"     json:"total_elements"`
	ClickableElements int `yaml:"clickable_elements" json:"clickable_elements"`
}

// Stats counts elements in the snapshot.
func (s *Snapshot) Stats() Stats {
	st := Stats{TotalElements: len(s.Elements)}
	for _, e := range s.Elements {
		if e.Clickable {
			st.ClickableElements++
		}
	}
	return st
}
