package logcat

import "sync"

// DefaultBufferSize is the in-memory entry cap for a monitor when the
// caller does not choose one.
const DefaultBufferSize = 1000

// Buffer is a fixed-capacity ring of log entries. Once full, each
// append evicts the oldest entry. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewBuffer returns a ring holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

// Append adds e, evicting the oldest entry if the ring is full.
func (b *Buffer) Append(e Entry) {
	b.mu.Lock()
	b.entries[b.next] = e
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.full = true
	}
	b.mu.Unlock()
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return len(b.entries)
	}
	return b.next
}

// Recent returns up to n of the most recent entries in arrival order,
// oldest of the window first. n <= 0 returns everything buffered.
func (b *Buffer) Recent(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := b.next
	start := 0
	if b.full {
		size = len(b.entries)
		start = b.next
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Entry, 0, n)
	for i := size - n; i < size; i++ {
		out = append(out, b.entries[(start+i)%len(b.entries)])
	}
	return out
}
