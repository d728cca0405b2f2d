// ABOUTME: Profile validation applied before every profile save.
// ABOUTME: Fills defaults for blank fields and rejects impossible training frequencies.
package validate

import (
	"strings"

	"github.com/harperreed/coach/internal/models"
)

// Profile normalises p in place. A blank training split gets the default;
// days per week must be within 0-7.
func Profile(p *models.Profile) error {
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "required"}
	}
	if p.DaysPerWeek < 0 || p.DaysPerWeek > 7 {
		return &ValidationError{Field: "days_per_week", Message: "must be between 0 and 7"}
	}

	p.Name = strings.TrimSpace(p.Name)
	p.TrainingSplit = strings.TrimSpace(p.TrainingSplit)
	if p.TrainingSplit == "" {
		p.TrainingSplit = models.DefaultTrainingSplit
	}
	p.InjuryNotes = strings.TrimSpace(p.InjuryNotes)
	p.DietaryNotes = strings.TrimSpace(p.DietaryNotes)

	var goals []string
	for _, g := range p.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	p.Goals = goals
	return nil
}
