// ABOUTME: Markdown rendering of a snapshot for human-readable export.
// ABOUTME: Profile first, then one table row per entry.
package interchange

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders a snapshot as a Markdown report.
func Markdown(snap *Snapshot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Coach Export - %s\n\n", snap.UserID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", snap.ExportedAt.Format(time.RFC3339)))

	if p := snap.Profile; p != nil {
		sb.WriteString("## Profile\n\n")
		if p.Name != "" {
			sb.WriteString(fmt.Sprintf("- **Name:** %s\n", p.Name))
		}
		sb.WriteString(fmt.Sprintf("- **Training split:** %s\n", p.TrainingSplit))
		sb.WriteString(fmt.Sprintf("- **Days per week:** %d\n", p.DaysPerWeek))
		if len(p.Goals) > 0 {
			sb.WriteString(fmt.Sprintf("- **Goals:** %s\n", strings.Join(p.Goals, ", ")))
		}
		if p.InjuryNotes != "" {
			sb.WriteString(fmt.Sprintf("- **Injuries:** %s\n", p.InjuryNotes))
		}
		if p.DietaryNotes != "" {
			sb.WriteString(fmt.Sprintf("- **Diet:** %s\n", p.DietaryNotes))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Entries (%d)\n\n", len(snap.Entries)))
	if len(snap.Entries) == 0 {
		sb.WriteString("No entries.\n")
		return sb.String()
	}

	sb.WriteString("| Date | Training | Split | Volume | Energy | Sleep | Recovery | Soreness | Notes |\n")
	sb.WriteString("|------|----------|-------|--------|--------|-------|----------|----------|-------|\n")
	for _, r := range snap.Entries {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Date,
			cell(r.TrainingDone),
			r.Split,
			r.TrainingVolume,
			cell(string(r.Energy)),
			cell(string(r.SleepHours)),
			cell(string(r.RecoveryScore)),
			cell(string(r.Soreness)),
			cell(r.Notes),
		))
	}
	return sb.String()
}

// cell escapes pipes and newlines so text stays in one table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
