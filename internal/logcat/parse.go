package logcat

import (
	"regexp"
	"strconv"
	"strings"
)

// threadtime layout: "MM-DD HH:MM:SS.mmm  PID  TID PRIO TAG: message".
// The tag may contain spaces but never a colon.
var threadtimePattern = regexp.MustCompile(
	`^(\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\.\d{3})\s+(\d+)\s+(\d+)\s+([VDIWEF])\s+([^:]*?)\s*:\s?(.*)$`)

// ParseLine parses one logcat -v threadtime line. Each line is parsed
// independently; threadtime carries no continuation marker, so no
// attempt is made to join multi-line messages.
func ParseLine(line string) Entry {
	m := threadtimePattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{Message: line, Unparsed: true, Raw: line}
	}
	pid, _ := strconv.Atoi(m[2])
	tid, _ := strconv.Atoi(m[3])
	return Entry{
		Timestamp: m[1],
		PID:       pid,
		TID:       tid,
		Priority:  m[4],
		Tag:       m[5],
		Message:   m[6],
		Raw:       line,
	}
}

// separator reports whether line is one of logcat's buffer banner
// lines rather than log content.
func separator(line string) bool {
	return strings.HasPrefix(line, "--------- beginning of")
}
