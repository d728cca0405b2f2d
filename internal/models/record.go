// ABOUTME: Record is the flat, loosely-typed interchange form of an Entry.
// ABOUTME: Scalar keeps raw text from JSON/YAML numbers, strings, or lists until validation.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scalar holds a field exactly as received, as text. Empty means absent.
// JSON/YAML numbers, strings and lists of either are accepted; lists are
// joined with ", " so soreness can arrive as ["knee", "back"] or "knee, back".
type Scalar string

// UnmarshalJSON accepts null, strings, numbers, booleans and flat arrays.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var part Scalar
			if err := part.UnmarshalJSON(item); err != nil {
				return err
			}
			if part != "" {
				parts = append(parts, string(part))
			}
		}
		*s = Scalar(strings.Join(parts, ", "))
		return nil
	case '{':
		return fmt.Errorf("expected scalar or list, got object")
	default:
		*s = Scalar(string(data))
		return nil
	}
}

// MarshalJSON writes numeric text as a JSON number and everything else as a string.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if f, ok := s.number(); ok {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalYAML accepts scalar and sequence nodes.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*s = ""
			return nil
		}
		*s = Scalar(node.Value)
		return nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			var part Scalar
			if err := part.UnmarshalYAML(child); err != nil {
				return err
			}
			if part != "" {
				parts = append(parts, string(part))
			}
		}
		*s = Scalar(strings.Join(parts, ", "))
		return nil
	default:
		return fmt.Errorf("line %d: expected scalar or list", node.Line)
	}
}

// MarshalYAML writes numeric text as a YAML number.
func (s Scalar) MarshalYAML() (interface{}, error) {
	if f, ok := s.number(); ok {
		return f, nil
	}
	return string(s), nil
}

// IsZero reports whether the scalar is absent. Used by yaml omitempty.
func (s Scalar) IsZero() bool {
	return strings.TrimSpace(string(s)) == ""
}

func (s Scalar) number() (float64, bool) {
	text := strings.TrimSpace(string(s))
	if text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Text is free text that also accepts bare numbers and lists on decode, like
// Scalar, but always encodes as a string so "007" stays "007".
type Text string

// UnmarshalJSON decodes like Scalar.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s Scalar
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

// UnmarshalYAML decodes like Scalar.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	var s Scalar
	if err := s.UnmarshalYAML(node); err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

// ScalarFloat formats a float for a Scalar field.
func ScalarFloat(f float64) Scalar {
	return Scalar(strconv.FormatFloat(f, 'f', -1, 64))
}

// Record is one entry in its flat interchange form: snapshot files, CLI
// flags, MCP tool input and webhook payloads all arrive as Records.
// Derived fields are informational only; they are recomputed on the way in.
type Record struct {
	Date            string `json:"date" yaml:"date"`
	Timestamp       string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Mood            Text   `json:"mood,omitempty" yaml:"mood,omitempty"`
	Energy          Scalar `json:"energy,omitempty" yaml:"energy,omitempty"`
	SleepHours      Scalar `json:"sleep_hours,omitempty" yaml:"sleep_hours,omitempty"`
	SleepQuality    Scalar `json:"sleep_quality,omitempty" yaml:"sleep_quality,omitempty"`
	StressLevel     Scalar `json:"stress_level,omitempty" yaml:"stress_level,omitempty"`
	Soreness        Scalar `json:"soreness,omitempty" yaml:"soreness,omitempty"`
	TrainingDone    string `json:"training_done,omitempty" yaml:"training_done,omitempty"`
	TrainingQuality Scalar `json:"training_quality,omitempty" yaml:"training_quality,omitempty"`
	Nutrition       string `json:"nutrition,omitempty" yaml:"nutrition,omitempty"`
	Hydration       Scalar `json:"hydration,omitempty" yaml:"hydration,omitempty"`
	Notes           string `json:"notes,omitempty" yaml:"notes,omitempty"`

	RecoveryScore  Scalar `json:"recovery_score,omitempty" yaml:"recovery_score,omitempty"`
	TrainingVolume string `json:"training_volume,omitempty" yaml:"training_volume,omitempty"`
	Split          string `json:"split,omitempty" yaml:"split,omitempty"`
}

// RecordFromEntry flattens a stored entry for export.
func RecordFromEntry(e *Entry) Record {
	r := Record{
		Date:           e.Date,
		Mood:           Text(e.Mood),
		TrainingDone:   e.TrainingDone,
		Nutrition:      e.Nutrition,
		Notes:          e.Notes,
		RecoveryScore:  ScalarFloat(e.RecoveryScore),
		TrainingVolume: string(e.TrainingVolume),
		Split:          string(e.Split),
	}
	if !e.Timestamp.IsZero() {
		r.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	r.Energy = floatScalar(e.Energy)
	r.SleepHours = floatScalar(e.SleepHours)
	r.SleepQuality = floatScalar(e.SleepQuality)
	r.StressLevel = floatScalar(e.StressLevel)
	r.TrainingQuality = floatScalar(e.TrainingQuality)
	r.Hydration = floatScalar(e.Hydration)

	switch {
	case e.Soreness == nil:
	case len(e.Soreness) == 0:
		r.Soreness = "none"
	default:
		r.Soreness = Scalar(strings.Join(e.Soreness, ", "))
	}
	return r
}

func floatScalar(f *float64) Scalar {
	if f == nil {
		return ""
	}
	return ScalarFloat(*f)
}
