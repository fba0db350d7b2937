// Package output serializes command results to stdout.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/droidcli/droidcli/internal/ui"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// InspectResult is the top-level output of the `inspect` command.
type InspectResult struct {
	Device   string       `yaml:"device,omitempty"   json:"device,omitempty"`
	App      string       `yaml:"app,omitempty"      json:"app,omitempty"`
	Activity string       `yaml:"activity,omitempty" json:"activity,omitempty"`
	TS       int64        `yaml:"ts"                 json:"ts"`
	Stats    ui.Stats     `yaml:"stats"              json:"stats"`
	Elements []ui.Element `yaml:"elements"           json:"elements"`
}

// FindResult is the top-level output of the `find` command.
type FindResult struct {
	Device   string       `yaml:"device,omitempty" json:"device,omitempty"`
	Query    string       `yaml:"query"            json:"query"`
	Count    int          `yaml:"count"            json:"count"`
	Elements []ui.Element `yaml:"elements"         json:"elements"`
}

// ActionResult is the output of gesture and input commands.
type ActionResult struct {
	Device string      `yaml:"device,omitempty"  json:"device,omitempty"`
	Action string      `yaml:"action"            json:"action"`
	OK     bool        `yaml:"ok"                json:"ok"`
	Error  string      `yaml:"error,omitempty"   json:"error,omitempty"`
	Target *ui.Element `yaml:"target,omitempty"  json:"target,omitempty"`
	X      int         `yaml:"x,omitempty"       json:"x,omitempty"`
	Y      int         `yaml:"y,omitempty"       json:"y,omitempty"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
