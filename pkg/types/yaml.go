package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// StringList decodes from either a single YAML string or a list of strings.
type StringList []string

// UnmarshalYAML accepts a scalar or a sequence.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// IntList decodes from either a single YAML integer or a list of integers.
type IntList []int

// UnmarshalYAML accepts a scalar or a sequence.
func (l *IntList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*l = nil
			return nil
		}
		var v int
		if err := node.Decode(&v); err != nil {
			return err
		}
		*l = IntList{v}
		return nil
	case yaml.SequenceNode:
		var items []int
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected an integer or a list of integers", node.Line)
	}
}

// Duration is a time.Duration that decodes from YAML as an integer number
// of seconds or a string such as "90s", "30m", "12h", "1d", "1w" or
// "2 days".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML parses the duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a duration", node.Line)
	}
	v, err := ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration in Go syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

var unitWords = strings.NewReplacer(
	"weeks", "w", "week", "w",
	"days", "d", "day", "d",
	"hours", "h", "hour", "h", "hrs", "h", "hr", "h",
	"minutes", "m", "minute", "m", "mins", "m", "min", "m",
	"seconds", "s", "second", "s", "secs", "s", "sec", "s",
	" ", "",
)

// ParseDuration parses a bare number of seconds or a duration string with
// optional day and week units.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := str2duration.ParseDuration(unitWords.Replace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// DefaultRemind is the reminder interval used for `remind: true`.
const DefaultRemind = 24 * time.Hour

// RemindInterval is a user's reminder setting. It decodes from a boolean
// (true means one day, false disables reminders) or a duration.
type RemindInterval Duration

// Std returns the interval, zero when reminders are disabled.
func (r RemindInterval) Std() time.Duration {
	return time.Duration(r)
}

// UnmarshalYAML accepts a boolean or a duration.
func (r *RemindInterval) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var b bool
		if node.ShortTag() == "!!bool" {
			if err := node.Decode(&b); err != nil {
				return err
			}
			if b {
				*r = RemindInterval(DefaultRemind)
			} else {
				*r = 0
			}
			return nil
		}
	}
	var d Duration
	if err := d.UnmarshalYAML(node); err != nil {
		return err
	}
	*r = RemindInterval(d)
	return nil
}
