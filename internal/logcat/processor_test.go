package logcat

import (
	"fmt"
	"testing"
)

// recordSink collects every written entry.
type recordSink struct {
	entries []Entry
	closed  bool
}

func (s *recordSink) Write(e Entry) error { s.entries = append(s.entries, e); return nil }
func (s *recordSink) Close() error        { s.closed = true; return nil }

func TestProcessor_SinksSeeEverything(t *testing.T) {
	sink := &recordSink{}
	// Ring of 2 while 5 lines flow through.
	p := NewProcessor(2, sink)
	for i := 0; i < 5; i++ {
		p.Consume(fmt.Sprintf("03-15 14:23:45.%03d  1 1 I Tag: m%d", i, i))
	}

	if p.Count() != 5 {
		t.Errorf("count: got %d, want 5", p.Count())
	}
	if len(sink.entries) != 5 {
		t.Errorf("sink should see every entry despite ring eviction: got %d", len(sink.entries))
	}
	if got := p.Recent(0); len(got) != 2 {
		t.Errorf("ring should hold 2 entries: got %d", len(got))
	}

	p.Close()
	if !sink.closed {
		t.Error("Close should close sinks")
	}
}

func TestProcessor_SeparatorNotCounted(t *testing.T) {
	p := NewProcessor(10)
	p.Consume("--------- beginning of main")
	p.Consume("03-15 14:23:45.678  1 1 I Tag: msg")
	if p.Count() != 1 {
		t.Errorf("count: got %d, want 1", p.Count())
	}
}

func TestProcessor_Subscribe(t *testing.T) {
	p := NewProcessor(10)
	id, ch := p.Subscribe(4)

	p.Consume("03-15 14:23:45.678  1 1 W Tag: first")
	select {
	case e := <-ch:
		if e.Message != "first" {
			t.Errorf("message: %q", e.Message)
		}
	default:
		t.Fatal("subscriber should have received the entry")
	}

	p.Unsubscribe(id)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestProcessor_SlowSubscriberDoesNotBlock(t *testing.T) {
	p := NewProcessor(10)
	_, ch := p.Subscribe(1)

	// Fill the subscriber buffer, then keep consuming. Consume must
	// not block even though nobody drains the channel.
	for i := 0; i < 10; i++ {
		p.Consume(fmt.Sprintf("03-15 14:23:45.678  1 1 I Tag: m%d", i))
	}
	if p.Count() != 10 {
		t.Errorf("count: got %d, want 10", p.Count())
	}
	if len(ch) != 1 {
		t.Errorf("subscriber buffer: got %d", len(ch))
	}
	p.Close()
}

func TestProcessor_CloseEndsSubscriptions(t *testing.T) {
	p := NewProcessor(10)
	_, ch := p.Subscribe(4)
	p.Close()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}

	// Consuming after close must not panic or write to sinks.
	p.Consume("03-15 14:23:45.678  1 1 I Tag: late")
}
