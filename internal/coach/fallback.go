// ABOUTME: Deterministic keyword replies used when no generator answer is available.
// ABOUTME: Personalised from the profile and recent entries, safe with nil inputs.
package coach

import (
	"fmt"
	"strings"

	"github.com/harperreed/coach/internal/aggregate"
	"github.com/harperreed/coach/internal/models"
)

// GenericReply answers messages that match no keyword.
const GenericReply = "I'm here to help with your training, nutrition, and recovery! " +
	"Ask what to train today, what to eat, or tell me how you're feeling. " +
	"I learn from your daily logs to give better advice over time."

// FallbackReply picks a canned reply by keyword. The first matching rule wins.
func FallbackReply(text string, profile *models.Profile, recent []*models.Entry) string {
	msg := strings.ToLower(text)

	switch {
	case containsAny(msg, "tired", "low energy"):
		reply := "Sounds like you're running low. Keep today to light mobility work or some gentle yoga, no heavy training. Recovery is part of training!"
		if e := latest(recent); e != nil && e.SleepHours != nil && *e.SleepHours < 6 {
			reply += fmt.Sprintf(" You only logged %.1f hours of sleep last time, so an early night will help too.", *e.SleepHours)
		}
		return reply

	case containsAny(msg, "what should i train", "workout", "training"):
		split := models.DefaultTrainingSplit
		if profile != nil && strings.TrimSpace(profile.TrainingSplit) != "" {
			split = profile.TrainingSplit
		}
		if under, over, ok := lopsidedSplit(recent); ok {
			reply := fmt.Sprintf("You've done more %s days recently. How about a %s day to balance things out?", over, under)
			if injuries := injuryNotes(profile); injuries != "" {
				reply += fmt.Sprintf(" I'll keep it friendly for %s.", injuries)
			}
			return reply
		}
		reply := fmt.Sprintf("Looking at your %s split, which day are you on?", split)
		if e := latest(recent); e != nil && e.Split != "" && e.Split != models.SplitRest {
			reply += fmt.Sprintf(" Your last logged session was %s, so pick the next one in the rotation.", e.Split)
		}
		if injuries := injuryNotes(profile); injuries != "" {
			reply += fmt.Sprintf(" I'll keep it friendly for %s.", injuries)
		}
		return reply

	case containsAny(msg, "what should i eat", "food", "meal", "hungry"):
		reply := "Go for something with good protein and clean carbs, like eggs with vegetables, or chicken with rice and fruit after a session."
		if profile != nil && strings.TrimSpace(profile.DietaryNotes) != "" {
			reply += fmt.Sprintf(" Keeping your notes in mind: %s.", strings.TrimSpace(profile.DietaryNotes))
		}
		return reply

	case containsAny(msg, "injury", "pain"):
		if injuries := injuryNotes(profile); injuries != "" {
			return fmt.Sprintf("I'm keeping an eye on %s. Do your prehab work and skip anything that causes pain.", injuries)
		}
		return "Be careful with that. Skip any exercise that causes pain, and if it persists get it checked out."

	case containsAny(msg, "how am i doing", "progress"):
		return progressReply(recent)
	}
	return GenericReply
}

// progressWindow is how many of the newest entries the progress reply averages.
const progressWindow = 3

func progressReply(recent []*models.Entry) string {
	var energy, recovery []float64
	for _, e := range present(recent) {
		if len(recovery) == progressWindow {
			break
		}
		recovery = append(recovery, e.RecoveryScore)
		if e.Energy != nil {
			energy = append(energy, *e.Energy)
		}
	}
	if len(recovery) == 0 {
		return "I'm still learning about your patterns. Log your daily feedback to get personalised insights!"
	}

	avgRecovery := average(recovery)
	if len(energy) == 0 {
		return fmt.Sprintf("Looking at your recent data: recovery %.1f/10. Log your energy too so I can tell how you're holding up.", avgRecovery)
	}
	avgEnergy := average(energy)
	verdict := "Consider more recovery time."
	if avgEnergy > 6 {
		verdict = "Keep it up!"
	}
	return fmt.Sprintf("Looking at your recent data: average energy %.1f/10, recovery %.1f/10. %s", avgEnergy, avgRecovery, verdict)
}

// lopsidedSplit compares Push, Pull and Legs over the last week and returns
// the least and most trained when they differ. Ties go to the earlier split.
func lopsidedSplit(recent []*models.Entry) (under, over models.Split, ok bool) {
	entries := present(recent)
	if len(entries) == 0 {
		return "", "", false
	}
	counts := aggregate.SplitCounts(aggregate.Window(entries, aggregate.WeekDays))
	order := []models.Split{models.SplitPush, models.SplitPull, models.SplitLegs}
	under, over = order[0], order[0]
	for _, sp := range order[1:] {
		if counts[sp] < counts[under] {
			under = sp
		}
		if counts[sp] > counts[over] {
			over = sp
		}
	}
	return under, over, counts[under] < counts[over]
}

func present(recent []*models.Entry) []*models.Entry {
	out := make([]*models.Entry, 0, len(recent))
	for _, e := range recent {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func average(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func latest(recent []*models.Entry) *models.Entry {
	for _, e := range recent {
		if e != nil {
			return e
		}
	}
	return nil
}

func injuryNotes(p *models.Profile) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.InjuryNotes)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
