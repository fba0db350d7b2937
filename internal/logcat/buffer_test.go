package logcat

import (
	"fmt"
	"testing"
)

func TestBuffer_RecentOrder(t *testing.T) {
	b := NewBuffer(10)
	for i := 0; i < 5; i++ {
		b.Append(Entry{Message: fmt.Sprintf("m%d", i)})
	}
	if b.Len() != 5 {
		t.Fatalf("len: got %d, want 5", b.Len())
	}

	recent := b.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("recent: got %d entries", len(recent))
	}
	for i, want := range []string{"m2", "m3", "m4"} {
		if recent[i].Message != want {
			t.Errorf("recent[%d] = %q, want %q", i, recent[i].Message, want)
		}
	}
}

func TestBuffer_Eviction(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 7; i++ {
		b.Append(Entry{Message: fmt.Sprintf("m%d", i)})
	}
	if b.Len() != 3 {
		t.Fatalf("len after wrap: got %d, want 3", b.Len())
	}
	recent := b.Recent(0)
	for i, want := range []string{"m4", "m5", "m6"} {
		if recent[i].Message != want {
			t.Errorf("recent[%d] = %q, want %q", i, recent[i].Message, want)
		}
	}
}

func TestBuffer_RecentMoreThanHeld(t *testing.T) {
	b := NewBuffer(10)
	b.Append(Entry{Message: "only"})
	recent := b.Recent(100)
	if len(recent) != 1 || recent[0].Message != "only" {
		t.Errorf("got %v", recent)
	}
}

func TestBuffer_Empty(t *testing.T) {
	b := NewBuffer(4)
	if got := b.Recent(10); len(got) != 0 {
		t.Errorf("empty buffer returned %d entries", len(got))
	}
}
