// ABOUTME: Entry validation turning a loosely-typed Record into a typed Entry.
// ABOUTME: Parses numbers once, canonicalises dates and soreness, and derives metrics.
package validate

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/coach/internal/metrics"
	"github.com/harperreed/coach/internal/models"
)

// ValidationError rejects a record before it reaches storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Warning records a field that was dropped or ignored without rejecting the record.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// Accepted date layouts, canonical first.
var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006/01/02",
}

type numericField struct {
	name string
	raw  models.Scalar
	max  float64
	dst  **float64
}

// Validate checks a record and returns the typed entry with derived fields set.
// Bad optional fields are dropped with a warning; a missing user or date is an error.
func Validate(userID string, rec models.Record) (*models.Entry, []Warning, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, &ValidationError{Field: "user_id", Message: "required"}
	}

	date, err := ParseDate(rec.Date)
	if err != nil {
		return nil, nil, err
	}

	e := models.NewEntry(userID, date)
	var warnings []Warning

	if ts := strings.TrimSpace(rec.Timestamp); ts != "" {
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			warnings = append(warnings, Warning{Field: "timestamp", Message: "not RFC3339, ignored"})
		}
	}

	e.Mood = strings.TrimSpace(string(rec.Mood))
	e.TrainingDone = strings.TrimSpace(rec.TrainingDone)
	e.Nutrition = strings.TrimSpace(rec.Nutrition)
	e.Notes = strings.TrimSpace(rec.Notes)

	fields := []numericField{
		{"energy", rec.Energy, 10, &e.Energy},
		{"sleep_hours", rec.SleepHours, 24, &e.SleepHours},
		{"sleep_quality", rec.SleepQuality, 10, &e.SleepQuality},
		{"stress_level", rec.StressLevel, 10, &e.StressLevel},
		{"training_quality", rec.TrainingQuality, 10, &e.TrainingQuality},
		{"hydration", rec.Hydration, 10, &e.Hydration},
	}
	for _, f := range fields {
		v, w := parseNumber(f.name, f.raw, f.max)
		if w != nil {
			warnings = append(warnings, *w)
			continue
		}
		*f.dst = v
	}

	e.Soreness = ParseSoreness(string(rec.Soreness))

	metrics.Derive(e)
	return e, warnings, nil
}

// ParseDate canonicalises a date string to YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "date", Message: "required"}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.DateLayout), nil
		}
	}
	return "", &ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
}

// ParseSoreness turns comma-separated soreness text into sorted, unique tags.
// "none" yields an empty non-nil slice; blank input yields nil.
func ParseSoreness(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.EqualFold(s, "none") {
		return []string{}
	}

	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || tag == "none" {
			continue
		}
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

func parseNumber(field string, raw models.Scalar, limit float64) (*float64, *Warning) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &Warning{Field: field, Message: fmt.Sprintf("%q is not a number, dropped", text)}
	}
	if v < 0 || v > limit {
		return nil, &Warning{Field: field, Message: fmt.Sprintf("%g outside 0-%g, dropped", v, limit)}
	}
	return &v, nil
}
