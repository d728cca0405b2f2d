// ABOUTME: Snapshot format for file-based backup of one user's profile and entries.
// ABOUTME: Decodes entries one record at a time so a bad record never spoils the file.
package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/coach/internal/models"
)

// Snapshot header values written by Export.
const (
	SnapshotVersion = "1.0"
	SnapshotTool    = "coach"
)

// Format is a snapshot file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Snapshot is a full dump of one user's data in the flat interchange form.
type Snapshot struct {
	Version    string          `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Tool       string          `json:"tool" yaml:"tool"`
	UserID     string          `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Profile    *models.Profile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Entries    []models.Record `json:"entries" yaml:"entries"`

	// Rejected lists entry records that could not be decoded at all.
	Rejected []Rejection `json:"-" yaml:"-"`
}

// Rejection is a record skipped during decode or import. Index is -1 for
// the profile.
type Rejection struct {
	Index  int    `json:"index"`
	Date   string `json:"date,omitempty"`
	Reason string `json:"reason"`
}

// Encode writes the snapshot in the given format.
func (s *Snapshot) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return json.MarshalIndent(s, "", "  ")
	}
}

type jsonSnapshot struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Tool       string            `json:"tool"`
	UserID     string            `json:"user_id"`
	Profile    *models.Profile   `json:"profile"`
	Entries    []json.RawMessage `json:"entries"`
}

type yamlSnapshot struct {
	Version    string          `yaml:"version"`
	ExportedAt time.Time       `yaml:"exported_at"`
	Tool       string          `yaml:"tool"`
	UserID     string          `yaml:"user_id"`
	Profile    *models.Profile `yaml:"profile"`
	Entries    []yaml.Node     `yaml:"entries"`
}

// Decode parses a snapshot. A bare array of entry records is also accepted,
// as written by older daily log files. Records that fail to decode are
// listed in Rejected rather than failing the whole snapshot.
func Decode(data []byte, format Format) (*Snapshot, error) {
	if format == FormatYAML {
		return decodeYAML(data)
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) (*Snapshot, error) {
	var raw jsonSnapshot
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw.Entries); err != nil {
			return nil, fmt.Errorf("decode entries: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := &Snapshot{
		Version:    raw.Version,
		ExportedAt: raw.ExportedAt,
		Tool:       raw.Tool,
		UserID:     raw.UserID,
		Profile:    raw.Profile,
	}
	for i, msg := range raw.Entries {
		var rec models.Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		snap.Entries = append(snap.Entries, rec)
	}
	return snap, nil
}

func decodeYAML(data []byte) (*Snapshot, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	var raw yamlSnapshot
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
		for _, n := range doc.Content[0].Content {
			raw.Entries = append(raw.Entries, *n)
		}
	} else if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := &Snapshot{
		Version:    raw.Version,
		ExportedAt: raw.ExportedAt,
		Tool:       raw.Tool,
		UserID:     raw.UserID,
		Profile:    raw.Profile,
	}
	for i := range raw.Entries {
		var rec models.Record
		if err := raw.Entries[i].Decode(&rec); err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		snap.Entries = append(snap.Entries, rec)
	}
	return snap, nil
}
