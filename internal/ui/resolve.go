package ui

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCriteria is returned when a search specifies no predicate at
// all. An empty criteria set would match every element on screen, which
// is never what a caller wants from "tap the matching element".
var ErrEmptyCriteria = errors.New("element criteria is empty: specify at least one of text, resource_id, content_desc, class, or a state filter")

// Criteria is a set of AND-combined element predicates.
//
// Matching policy: Text and ContentDesc match case-insensitively,
// substring unless ExactText is set. ResourceID and Class are exact,
// case-sensitive matches.
type Criteria struct {
	Text        string `yaml:"text,omitempty"          json:"text,omitempty"`
	ResourceID  string `yaml:"resource_id,omitempty"   json:"resource_id,omitempty"`
	ContentDesc string `yaml:"content_desc,omitempty"  json:"content_desc,omitempty"`
	Class       string `yaml:"class,omitempty"         json:"class,omitempty"`

	ExactText bool `yaml:"exact,omitempty"           json:"exact,omitempty"`

	ClickableOnly  bool `yaml:"clickable_only,omitempty"  json:"clickable_only,omitempty"`
	EnabledOnly    bool `yaml:"enabled_only,omitempty"    json:"enabled_only,omitempty"`
	ScrollableOnly bool `yaml:"scrollable_only,omitempty" json:"scrollable_only,omitempty"`
}

// Empty reports whether no predicate is set.
func (c Criteria) Empty() bool {
	return c.Text == "" && c.ResourceID == "" && c.ContentDesc == "" && c.Class == "" &&
		!c.ClickableOnly && !c.EnabledOnly && !c.ScrollableOnly
}

func (c Criteria) String() string {
	var parts []string
	if c.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", c.Text))
	}
	if c.ResourceID != "" {
		parts = append(parts, fmt.Sprintf("resource_id=%q", c.ResourceID))
	}
	if c.ContentDesc != "" {
		parts = append(parts, fmt.Sprintf("content_desc=%q", c.ContentDesc))
	}
	if c.Class != "" {
		parts = append(parts, fmt.Sprintf("class=%q", c.Class))
	}
	if c.ExactText {
		parts = append(parts, "exact")
	}
	if c.ClickableOnly {
		parts = append(parts, "clickable_only")
	}
	if c.EnabledOnly {
		parts = append(parts, "enabled_only")
	}
	if c.ScrollableOnly {
		parts = append(parts, "scrollable_only")
	}
	return strings.Join(parts, " ")
}

// NotFoundError reports a resolve that matched no element at the
// requested index. Matches carries the actual match count so callers
// can tell "nothing matched" from "index out of range".
type NotFoundError struct {
	Criteria Criteria
	Index    int
	Matches  int
}

func (e *NotFoundError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("no element matches %s", e.Criteria)
	}
	return fmt.Sprintf("index %d out of range: %d element(s) match %s", e.Index, e.Matches, e.Criteria)
}

// Find returns every element in the snapshot matching the criteria, in
// document order (depth-first, numbered before visibility filtering).
func Find(snap *Snapshot, c Criteria) ([]Element, error) {
	if c.Empty() {
		return nil, ErrEmptyCriteria
	}
	var matches []Element
	for _, el := range snap.Elements {
		if matchesCriteria(el, c) {
			matches = append(matches, el)
		}
	}
	return matches, nil
}

// Resolve picks the index-th match (0-based, document order). It never
// caches across calls: element identity is only valid within the given
// snapshot.
func Resolve(snap *Snapshot, c Criteria, index int) (Element, error) {
	matches, err := Find(snap, c)
	if err != nil {
		return Element{}, err
	}
	if index < 0 || index >= len(matches) {
		return Element{}, &NotFoundError{Criteria: c, Index: index, Matches: len(matches)}
	}
	return matches[index], nil
}

func matchesCriteria(el Element, c Criteria) bool {
	if c.ClickableOnly && !el.Clickable {
		return false
	}
	if c.EnabledOnly && !el.Enabled {
		return false
	}
	if c.ScrollableOnly && !el.Scrollable {
		return false
	}
	if c.Text != "" && !textMatch(el.Text, c.Text, c.ExactText) {
		return false
	}
	if c.ContentDesc != "" && !textMatch(el.ContentDesc, c.ContentDesc, c.ExactText) {
		return false
	}
	if c.ResourceID != "" && el.ResourceID != c.ResourceID {
		return false
	}
	if c.Class != "" && el.Class != c.Class {
		return false
	}
	return true
}

func textMatch(value, query string, exact bool) bool {
	if exact {
		return strings.EqualFold(value, query)
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(query))
}
