// Package logcat parses, buffers, and persists Android log output,
// both as one-shot dumps and as live monitored streams.
package logcat

// Android log priorities, in ascending severity. "S" suppresses
// output entirely and is only meaningful in filterspecs.
const (
	PriorityVerbose = "V"
	PriorityDebug   = "D"
	PriorityInfo    = "I"
	PriorityWarn    = "W"
	PriorityError   = "E"
	PriorityFatal   = "F"
	PrioritySilent  = "S"
)

var priorityRank = map[string]int{
	PriorityVerbose: 0,
	PriorityDebug:   1,
	PriorityInfo:    2,
	PriorityWarn:    3,
	PriorityError:   4,
	PriorityFatal:   5,
	PrioritySilent:  6,
}

// ValidPriority reports whether p is a known priority letter.
func ValidPriority(p string) bool {
	_, ok := priorityRank[p]
	return ok
}

// AtLeast reports whether priority p is at or above min. Unknown
// priorities never satisfy a threshold.
func AtLeast(p, min string) bool {
	pr, ok1 := priorityRank[p]
	mr, ok2 := priorityRank[min]
	return ok1 && ok2 && pr >= mr
}

// Entry is one parsed logcat line. Lines that do not match the
// threadtime layout (kernel spew, buffer separators, partial writes)
// are kept with Unparsed set and the full line in Message, so nothing
// the device emitted is lost.
type Entry struct {
	Timestamp string `yaml:"timestamp,omitempty" json:"timestamp,omitempty"`
	PID       int    `yaml:"pid,omitempty"       json:"pid,omitempty"`
	TID       int    `yaml:"tid,omitempty"       json:"tid,omitempty"`
	Priority  string `yaml:"priority,omitempty"  json:"priority,omitempty"`
	Tag       string `yaml:"tag,omitempty"       json:"tag,omitempty"`
	Message   string `yaml:"message"             json:"message"`
	Unparsed  bool   `yaml:"unparsed,omitempty"  json:"unparsed,omitempty"`
	Raw       string `yaml:"-"                   json:"-"`
}
