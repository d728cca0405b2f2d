// ABOUTME: Calendar windows and small numeric helpers shared by the aggregations.
// ABOUTME: Windows are anchored on the newest entry, not on today.
package aggregate

import (
	"math"
	"slices"
	"strings"

	"github.com/harperreed/coach/internal/models"
)

// Window returns the entries within days calendar days of the newest entry,
// in their original order. A non-positive days returns every entry.
func Window(entries []*models.Entry, days int) []*models.Entry {
	if len(entries) == 0 || days <= 0 {
		return entries
	}

	newest := entries[0].Day()
	for _, e := range entries[1:] {
		if d := e.Day(); d.After(newest) {
			newest = d
		}
	}
	cutoff := newest.AddDate(0, 0, -(days - 1)).Format(models.DateLayout)

	out := make([]*models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Date >= cutoff {
			out = append(out, e)
		}
	}
	return out
}

// chronological returns a copy ordered oldest date first.
func chronological(entries []*models.Entry) []*models.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b *models.Entry) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// meanPtr returns the rounded mean, or nil when there are no values.
func meanPtr(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := round1(mean(values))
	return &m
}
