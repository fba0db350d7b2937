// Package config loads persistent defaults from ~/.droidcli.yaml.
// Flags always override file values; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the user's home directory.
const FileName = ".droidcli.yaml"

// Duration decodes either a duration string ("3s") or a plain number
// of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(time.Duration(n) * time.Second)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the persistent defaults.
type Config struct {
	// Device is the preferred device serial when several are attached.
	Device string `yaml:"device,omitempty"`

	// ADBPath overrides the adb binary to invoke.
	ADBPath string `yaml:"adb_path,omitempty"`

	// MediaDir receives screenshots and recordings.
	MediaDir string `yaml:"media_dir,omitempty"`

	// LogDir receives monitor log files and databases.
	LogDir string `yaml:"log_dir,omitempty"`

	// LogBufferSize caps each monitor's in-memory recent-entry ring.
	LogBufferSize int `yaml:"log_buffer_size,omitempty"`

	// StopGrace is how long a session stop may take before escalation.
	StopGrace Duration `yaml:"stop_grace,omitempty"`

	// Retention is how long stopped sessions stay listable.
	Retention Duration `yaml:"retention,omitempty"`
}

// Load reads the config file from the user's home directory. A
// missing file yields the zero Config.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, nil
	}
	return LoadFile(filepath.Join(home, FileName))
}

// LoadFile reads one config file. A missing file yields the zero
// Config; a malformed one is an error.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
