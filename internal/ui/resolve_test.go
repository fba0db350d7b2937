package ui

import (
	"errors"
	"testing"
)

func loginSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Parse(loginDump, ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestFind_DocumentOrder(t *testing.T) {
	snap := loginSnapshot(t)
	matches, err := Find(snap, Criteria{Text: "login"})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches: got %d, want 2", len(matches))
	}
	// Document order: the left button comes first.
	if matches[0].Bounds.Left != 40 || matches[1].Bounds.Left != 560 {
		t.Errorf("order: got lefts %d, %d", matches[0].Bounds.Left, matches[1].Bounds.Left)
	}
}

func TestFind_EmptyCriteria(t *testing.T) {
	snap := loginSnapshot(t)
	if _, err := Find(snap, Criteria{}); !errors.Is(err, ErrEmptyCriteria) {
		t.Fatalf("want ErrEmptyCriteria, got %v", err)
	}
}

func TestFind_CaseSensitivity(t *testing.T) {
	snap := loginSnapshot(t)

	// Text is case-insensitive substring.
	if m, _ := Find(snap, Criteria{Text: "LOGIN"}); len(m) != 2 {
		t.Errorf("text match should be case-insensitive: got %d matches", len(m))
	}
	if m, _ := Find(snap, Criteria{Text: "elco"}); len(m) != 1 {
		t.Errorf("text match should allow substrings: got %d matches", len(m))
	}

	// ResourceID is exact and case-sensitive.
	if m, _ := Find(snap, Criteria{ResourceID: "com.example:id/username"}); len(m) != 1 {
		t.Errorf("resource id exact match: got %d matches", len(m))
	}
	if m, _ := Find(snap, Criteria{ResourceID: "com.example:id/USERNAME"}); len(m) != 0 {
		t.Errorf("resource id should be case-sensitive: got %d matches", len(m))
	}
	if m, _ := Find(snap, Criteria{ResourceID: "username"}); len(m) != 0 {
		t.Errorf("resource id should not substring-match: got %d matches", len(m))
	}
}

func TestFind_ExactText(t *testing.T) {
	snap := loginSnapshot(t)
	if m, _ := Find(snap, Criteria{Text: "Log", ExactText: true}); len(m) != 0 {
		t.Errorf("exact should not substring-match: got %d matches", len(m))
	}
	if m, _ := Find(snap, Criteria{Text: "login", ExactText: true}); len(m) != 2 {
		t.Errorf("exact is still case-insensitive: got %d matches", len(m))
	}
}

func TestFind_CombinedCriteria(t *testing.T) {
	snap := loginSnapshot(t)
	matches, err := Find(snap, Criteria{Text: "Login", EnabledOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches: got %d, want 1", len(matches))
	}
	if matches[0].Bounds.Left != 40 {
		t.Errorf("wrong button matched: %+v", matches[0].Bounds)
	}
}

func TestResolve_Index(t *testing.T) {
	snap := loginSnapshot(t)

	second, err := Resolve(snap, Criteria{Text: "Login"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if second.Bounds.Left != 560 {
		t.Errorf("index 1 should be the right button: %+v", second.Bounds)
	}
}

func TestResolve_NotFound(t *testing.T) {
	snap := loginSnapshot(t)

	_, err := Resolve(snap, Criteria{Text: "Logout"}, 0)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want *NotFoundError, got %v", err)
	}
	if nf.Matches != 0 {
		t.Errorf("matches: got %d, want 0", nf.Matches)
	}

	_, err = Resolve(snap, Criteria{Text: "Login"}, 5)
	if !errors.As(err, &nf) {
		t.Fatalf("want *NotFoundError, got %v", err)
	}
	if nf.Matches != 2 || nf.Index != 5 {
		t.Errorf("got matches=%d index=%d, want matches=2 index=5", nf.Matches, nf.Index)
	}
}
