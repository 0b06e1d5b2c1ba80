package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Tool results are rendered by fixed rules rather than a second model call.
// That keeps the reply path at one model round-trip per message at the cost
// of template rigidity.

const (
	gulfDateLayout      = "Mon, Jan 2, 2006, 03:04 PM"
	gulfShortDateLayout = "Mon, Jan 2, 03:04 PM"
)

// gulfTime is the display timezone for interview dates. Sponsors are in the
// GCC regardless of where the service runs.
var gulfTime = loadGulfTime()

func loadGulfTime() *time.Location {
	loc, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		return time.FixedZone("GST", 4*60*60)
	}
	return loc
}

// FormatGulfDate renders a timestamp with year for confirmation messages.
func FormatGulfDate(t time.Time) string {
	return t.In(gulfTime).Format(gulfDateLayout)
}

// formatGulfShortDate renders a timestamp without year for list entries.
func formatGulfShortDate(t time.Time) string {
	return t.In(gulfTime).Format(gulfShortDateLayout)
}

// composeReply assembles the outbound text: the model's own prose first, then
// one formatted fragment per executed tool, in request order.
func composeReply(text string, executed []executedTool) string {
	var b strings.Builder
	b.WriteString(text)
	for _, ex := range executed {
		appendToolResult(&b, ex.Result)
	}
	reply := b.String()
	if strings.TrimSpace(reply) == "" {
		return "I've processed your request. How else can I help you today?"
	}
	return reply
}

func appendToolResult(b *strings.Builder, res ToolResult) {
	switch r := res.(type) {
	case ToolFailure:
		fmt.Fprintf(b, "\n\nI encountered an issue: %s", r.Error)

	case AvailabilityResult:
		if r.Count == 0 {
			msg := r.Message
			if msg == "" {
				msg = "No results found matching your criteria."
			}
			fmt.Fprintf(b, "\n\n%s", msg)
			if len(r.Suggestions) > 0 {
				b.WriteString("\n\nSuggestions:")
				for _, s := range r.Suggestions {
					fmt.Fprintf(b, "\n\u2022 %s", s)
				}
			}
			return
		}
		fmt.Fprintf(b, "\n\nGreat news! I found %d available maid%s:\n", r.Count, plural(r.Count))
		for i, m := range r.Maids {
			fmt.Fprintf(b, "\n%d. %s (%s)", i+1, m.Name, m.Age)
			fmt.Fprintf(b, "\n   \u2022 Experience: %s", m.Experience)
			fmt.Fprintf(b, "\n   \u2022 Skills: %s", m.Skills)
			fmt.Fprintf(b, "\n   \u2022 Location: %s", m.Location)
			fmt.Fprintf(b, "\n   \u2022 Languages: %s", m.Languages)
			fmt.Fprintf(b, "\n   \u2022 Availability: %s", m.Availability)
		}
		b.WriteString("\n\nWould you like more details about any of these candidates? Or would you like to schedule an interview?")

	case BookingList:
		fmt.Fprintf(b, "\n\nYou have %d booking%s", r.Count, plural(r.Count))
		for i, bk := range r.Bookings {
			fmt.Fprintf(b, "\n%d. %s - Status: %s", i+1, bk.BookingType, bk.Status)
		}

	case InterviewScheduled:
		b.WriteString("\n\n\u2705 Video Interview Scheduled!\n\n")
		b.WriteString("\U0001F4F9 Interview Details:\n")
		fmt.Fprintf(b, "\u2022 Maid: %s\n", r.MaidName)
		fmt.Fprintf(b, "\u2022 Date: %s\n", r.ScheduledDate)
		fmt.Fprintf(b, "\u2022 Duration: %d minutes\n", r.Duration)
		fmt.Fprintf(b, "\u2022 Platform: %s\n", strings.ToUpper(strings.ReplaceAll(r.InterviewType, "_", " ")))
		if r.MeetingLink != "" {
			fmt.Fprintf(b, "\u2022 Link: %s\n", r.MeetingLink)
		}
		b.WriteString("\n\u23F0 I'll send you reminders before the interview.\n")
		fmt.Fprintf(b, "\nWould you like me to send you %s's profile details to review?", r.MaidName)

	case InterviewList:
		if r.Count == 0 {
			msg := r.Message
			if msg == "" {
				msg = "You have no upcoming interviews scheduled."
			}
			fmt.Fprintf(b, "\n\n%s", msg)
			return
		}
		fmt.Fprintf(b, "\n\n\U0001F4C5 You have %d upcoming video interview%s:\n", r.Count, plural(r.Count))
		for i, iv := range r.Interviews {
			fmt.Fprintf(b, "\n%d. %s", i+1, iv.MaidName)
			fmt.Fprintf(b, "\n   \U0001F4C5 %s", iv.ScheduledDate)
			fmt.Fprintf(b, "\n   \U0001F4F9 %s", strings.ReplaceAll(iv.InterviewType, "_", " "))
			fmt.Fprintf(b, "\n   \u23F1\uFE0F  %d minutes", iv.DurationMinutes)
			fmt.Fprintf(b, "\n   Status: %s\n", iv.Status)
		}

	case ActionDone:
		if r.Success {
			b.WriteString("\n\n\u2705 Done! Your request has been processed successfully.")
		}
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
