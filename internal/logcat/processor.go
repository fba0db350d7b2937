package logcat

import (
	"sync"

	"github.com/droidcli/droidcli/internal/logging"
)

// Processor fans consumed log lines out to the in-memory ring, the
// configured sinks, and any live subscribers. Consume is called from a
// single reader goroutine; the query methods are safe to call from
// anywhere.
type Processor struct {
	buf *Buffer

	mu      sync.Mutex
	sinks   []Sink
	subs    map[int]chan Entry
	nextSub int
	count   int
	closed  bool
}

// NewProcessor returns a processor with a ring of bufferSize entries.
// Sinks receive every entry regardless of ring eviction.
func NewProcessor(bufferSize int, sinks ...Sink) *Processor {
	return &Processor{
		buf:   NewBuffer(bufferSize),
		sinks: sinks,
		subs:  make(map[int]chan Entry),
	}
}

// Consume parses one raw line and distributes the entry. Separator
// banners are dropped. Subscriber delivery is
// non-blocking: a slow subscriber loses entries rather than stalling
// the reader.
func (p *Processor) Consume(line string) {
	if separator(line) {
		return
	}
	e := ParseLine(line)
	p.buf.Append(e)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.count++
	for _, s := range p.sinks {
		if err := s.Write(e); err != nil {
			logging.Warnf("log sink write: %v", err)
		}
	}
	for _, ch := range p.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Count returns how many entries have been consumed in total.
func (p *Processor) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Recent returns up to n of the most recently consumed entries.
func (p *Processor) Recent(n int) []Entry {
	return p.buf.Recent(n)
}

// Subscribe registers a live entry channel with the given capacity.
// The channel is closed when the processor closes.
func (p *Processor) Subscribe(capacity int) (int, <-chan Entry) {
	if capacity <= 0 {
		capacity = 64
	}
	ch := make(chan Entry, capacity)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return -1, ch
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscriber channel.
func (p *Processor) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(ch)
	}
}

// Close flushes and closes the sinks and ends every subscription.
// Consumed entries remain queryable through Recent and Count.
func (p *Processor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			logging.Warnf("log sink close: %v", err)
		}
	}
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
