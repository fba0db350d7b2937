package logcat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/session"
)

// MonitorConfig fixes a log monitor's parameters at start time.
type MonitorConfig struct {
	// Tag restricts the stream to one tag; empty means all tags.
	Tag string `yaml:"tag,omitempty"          json:"tag,omitempty"`

	// MinPriority is the lowest priority to capture. Defaults to V.
	MinPriority string `yaml:"min_priority,omitempty" json:"min_priority,omitempty"`

	// Clear empties the device log buffer before streaming starts.
	Clear bool `yaml:"clear,omitempty"        json:"clear,omitempty"`

	// BufferSize caps the in-memory ring of recent entries.
	BufferSize int `yaml:"buffer_size,omitempty"  json:"buffer_size,omitempty"`

	// Dir receives the captured log file (and database, if enabled).
	Dir string `yaml:"dir,omitempty"          json:"dir,omitempty"`

	// Database additionally stores parsed entries in a SQLite file
	// next to the log file.
	Database bool `yaml:"database,omitempty"     json:"database,omitempty"`
}

// filterspec builds the logcat tag:priority filter arguments.
func (c MonitorConfig) filterspec() []string {
	prio := c.MinPriority
	if prio == "" {
		prio = PriorityVerbose
	}
	if c.Tag != "" {
		return []string{c.Tag + ":" + prio, "*:S"}
	}
	return []string{"*:" + prio}
}

// Monitor streams logcat from one device into a Processor. It
// implements session.Operation; the session registry drives its
// lifecycle.
type Monitor struct {
	mgr *adb.Manager
	cfg MonitorConfig

	mu       sync.Mutex
	proc     *Processor
	process  adb.Process
	artifact string

	readDone chan struct{}
}

// NewMonitor returns an unstarted monitor.
func NewMonitor(mgr *adb.Manager, cfg MonitorConfig) *Monitor {
	return &Monitor{mgr: mgr, cfg: cfg, readDone: make(chan struct{})}
}

// Start clears the buffer if requested, opens the sinks, and launches
// the logcat stream with a reader goroutine behind it.
func (m *Monitor) Start(ctx context.Context, id string) error {
	if m.cfg.MinPriority != "" && !ValidPriority(m.cfg.MinPriority) {
		return fmt.Errorf("unknown log priority %q", m.cfg.MinPriority)
	}

	if m.cfg.Clear {
		if res, err := m.mgr.Shell(ctx, adb.DefaultTimeout, "logcat", "-c"); err != nil {
			return err
		} else if !res.OK {
			return fmt.Errorf("logcat clear failed: %s", res.Stderr)
		}
	}

	dir := m.cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	artifact := filepath.Join(dir, "logmon_"+id+".log")
	fileSink, err := NewFileSink(artifact)
	if err != nil {
		return err
	}
	sinks := []Sink{fileSink}
	if m.cfg.Database {
		dbSink, err := NewSQLiteSink(filepath.Join(dir, "logmon_"+id+".db"))
		if err != nil {
			fileSink.Close()
			return err
		}
		sinks = append(sinks, dbSink)
	}
	proc := NewProcessor(m.cfg.BufferSize, sinks...)

	args := append([]string{"logcat", "-v", "threadtime"}, m.cfg.filterspec()...)
	p, err := m.mgr.Start(ctx, args...)
	if err != nil {
		proc.Close()
		return err
	}

	m.mu.Lock()
	m.proc = proc
	m.process = p
	m.artifact = artifact
	m.mu.Unlock()

	go m.readLoop(p, proc)
	return nil
}

func (m *Monitor) readLoop(p adb.Process, proc *Processor) {
	defer close(m.readDone)
	sc := bufio.NewScanner(p.Stdout())
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		proc.Consume(sc.Text())
	}
}

// Wait blocks until the logcat process exits and the reader drains.
func (m *Monitor) Wait() error {
	err := m.process.Wait()
	<-m.readDone
	return err
}

// Stop interrupts the logcat process.
func (m *Monitor) Stop() error { return m.process.Stop() }

// Kill force-terminates the logcat process.
func (m *Monitor) Kill() error { return m.process.Kill() }

// Finalize flushes and closes the sinks and records the artifact.
func (m *Monitor) Finalize(ctx context.Context, res *session.Result) {
	select {
	case <-m.readDone:
	case <-ctx.Done():
	}
	m.mu.Lock()
	proc, artifact := m.proc, m.artifact
	m.mu.Unlock()
	if proc == nil {
		return
	}
	proc.Close()
	res.Artifact = artifact
	res.Entries = proc.Count()
}

// Progress reports the live entry count for session listings.
func (m *Monitor) Progress() session.Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.proc == nil {
		return session.Progress{}
	}
	return session.Progress{Entries: m.proc.Count(), Artifact: m.artifact}
}

// Recent returns up to n of the most recently captured entries.
func (m *Monitor) Recent(n int) []Entry {
	m.mu.Lock()
	proc := m.proc
	m.mu.Unlock()
	if proc == nil {
		return nil
	}
	return proc.Recent(n)
}

// Subscribe attaches a live entry channel to the monitor's stream.
func (m *Monitor) Subscribe(capacity int) (int, <-chan Entry) {
	m.mu.Lock()
	proc := m.proc
	m.mu.Unlock()
	if proc == nil {
		ch := make(chan Entry)
		close(ch)
		return -1, ch
	}
	return proc.Subscribe(capacity)
}

// Unsubscribe detaches a subscriber by id.
func (m *Monitor) Unsubscribe(id int) {
	m.mu.Lock()
	proc := m.proc
	m.mu.Unlock()
	if proc != nil {
		proc.Unsubscribe(id)
	}
}
