// ABOUTME: Context bundle handed to the reply generator.
// ABOUTME: Renders the profile, recent entries, and analysis into a single prompt.
package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/coach/internal/models"
)

// ContextEntries is how many recent entries a context bundle carries.
const ContextEntries = 3

// Context is everything the generator needs to answer one message.
type Context struct {
	Profile       *models.Profile
	RecentEntries []*models.Entry
	AnalysisText  string
}

const systemPrompt = "You are a personal AI fitness coach. Be encouraging, knowledgeable, and personalized."

// Prompt renders the user message sent alongside the system prompt.
func (c *Context) Prompt(userText string) string {
	var b strings.Builder

	b.WriteString("PROFILE:\n")
	b.WriteString(indentJSON(c.Profile))
	b.WriteString("\n\nRECENT PATTERNS:\n")
	b.WriteString(c.AnalysisText)
	fmt.Fprintf(&b, "\n\nRECENT LOGS (last %d days):\n", ContextEntries)

	records := make([]models.Record, 0, len(c.RecentEntries))
	for _, e := range c.RecentEntries {
		records = append(records, models.RecordFromEntry(e))
	}
	b.WriteString(indentJSON(records))

	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("- Be encouraging and motivating like a real coach\n")
	b.WriteString("- Respect the injury notes in the profile\n")
	b.WriteString("- Suggest training that fits the goals and training split\n")
	b.WriteString("- Recommend food that fits the dietary notes and recent training\n")
	b.WriteString("- Use patterns in the logs to personalise advice\n")
	b.WriteString("- Keep responses conversational and short\n\n")
	fmt.Fprintf(&b, "User says: %s\n", userText)
	return b.String()
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
