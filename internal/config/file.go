package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Resource describes one monitored resource.
// Interval and Timeout are given in milliseconds in the file.
type Resource struct {
	Name       string    `yaml:"name"`
	Type       string    `yaml:"type"`
	IntervalMS int64     `yaml:"interval"`
	TimeoutMS  int64     `yaml:"timeout,omitempty"`
	Notifiers  []string  `yaml:"notifiers"`
	Config     yaml.Node `yaml:"config"`
}

// Interval returns the check interval as a duration.
func (r Resource) Interval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// Timeout returns the per-probe timeout. A probe may never run longer than
// the check interval, so the timeout is the interval when unset and capped
// at the interval otherwise.
func (r Resource) Timeout() time.Duration {
	timeout := time.Duration(r.TimeoutMS) * time.Millisecond
	if timeout <= 0 || timeout > r.Interval() {
		return r.Interval()
	}
	return timeout
}

// Notifier describes one notification channel.
type Notifier struct {
	Name   string    `yaml:"name"`
	Type   string    `yaml:"type"`
	Config yaml.Node `yaml:"config"`
}

// File is the parsed YAML configuration:
// resources: [{name, type, interval, notifiers, config}]
// notifiers: [{name, type, config}]
type File struct {
	Resources []Resource `yaml:"resources"`
	Notifiers []Notifier `yaml:"notifiers"`
}

// LoadFile parses and validates the YAML configuration at the given path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse config file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return File{}, err
	}

	return file, nil
}

// Validate checks structural consistency: unique names, positive intervals,
// and every notifier reference resolving to a configured notifier. Unknown
// resource/notifier types are caught later, when the registries build the
// concrete instances; both are startup failures either way.
func (f File) Validate() error {
	if len(f.Resources) == 0 {
		return fmt.Errorf("config contains no resources")
	}

	notifierNames := make(map[string]bool, len(f.Notifiers))
	for i, n := range f.Notifiers {
		if n.Name == "" {
			return fmt.Errorf("notifier %d: name is required", i)
		}
		if n.Type == "" {
			return fmt.Errorf("notifier %q: type is required", n.Name)
		}
		if notifierNames[n.Name] {
			return fmt.Errorf("notifier %q: duplicate name", n.Name)
		}
		notifierNames[n.Name] = true
	}

	resourceNames := make(map[string]bool, len(f.Resources))
	for i, r := range f.Resources {
		if r.Name == "" {
			return fmt.Errorf("resource %d: name is required", i)
		}
		if r.Type == "" {
			return fmt.Errorf("resource %q: type is required", r.Name)
		}
		if r.IntervalMS <= 0 {
			return fmt.Errorf("resource %q: interval must be greater than zero", r.Name)
		}
		if r.TimeoutMS < 0 {
			return fmt.Errorf("resource %q: timeout cannot be negative", r.Name)
		}
		if resourceNames[r.Name] {
			return fmt.Errorf("resource %q: duplicate name", r.Name)
		}
		resourceNames[r.Name] = true

		for _, name := range r.Notifiers {
			if !notifierNames[name] {
				return fmt.Errorf("resource %q: unknown notifier %q", r.Name, name)
			}
		}
	}

	return nil
}
