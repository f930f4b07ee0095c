package architect

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/vampirenirmal/storylord/internal/story"
)

const systemPrompt = `You are a master story architect. Your task is to create compelling plot events with detailed story beats that build a cohesive narrative.

A story beat is a narrative event essential to developing a plot event. Beat types include:
- conversation: Dialogue between characters
- action: Physical actions or events
- occurrence: External events that affect the story
- internal_dialogue: A character's inner thoughts
- revelation: Information revealed to characters or readers
- decision: A character making a significant choice

When creating plot events and beats:
- Ensure each beat advances the story meaningfully
- Create natural progressions between beats
- Use character motivations and relationships to drive conflict
- Maintain the specified tone throughout
- Build on previous plot events for narrative continuity

Respond with a single JSON object with this shape:
{"title": "<event title>", "summary": "<event summary>", "beats": [{"description": "<beat description>", "beat_type": "<one of the beat types>", "characters_involved": ["<character name>", ...]}]}`

var userTmpl = template.Must(template.New("architect").Parse(`## Story Context

**Story Idea:** {{.StoryIdea}}

**Tone:** {{.Tone}}

**Characters:**
{{.CharactersText}}

## Current Task

Generate plot event {{.CurrentEvent}} of {{.TotalEvents}}.

Create between {{.MinBeats}} and {{.MaxBeats}} story beats for this plot event.

{{.PreviousEvents}}

Create a plot event that naturally follows from the story so far (or begins the story if this is the first event). Ensure beats flow logically and advance the narrative.`))

type promptData struct {
	StoryIdea      string
	Tone           string
	CharactersText string
	CurrentEvent   int
	TotalEvents    int
	MinBeats       int
	MaxBeats       int
	PreviousEvents string
}

func renderUserPrompt(data promptData) (string, error) {
	var buf bytes.Buffer
	if err := userTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing architect prompt template: %w", err)
	}
	return buf.String(), nil
}

// formatPreviousEvents renders already-generated plot events so later events
// can build on them.
func formatPreviousEvents(events []story.PlotEvent) string {
	if len(events) == 0 {
		return "**Previous Plot Events:** None (this is the first event)"
	}

	var b strings.Builder
	b.WriteString("**Previous Plot Events:**\n\n")
	for i, event := range events {
		fmt.Fprintf(&b, "### Event %d: %s\n", i+1, event.Title)
		fmt.Fprintf(&b, "%s\n", event.Summary)
		b.WriteString("\nBeats:\n")
		for _, beat := range event.Beats {
			chars := "None"
			if len(beat.CharactersInvolved) > 0 {
				chars = strings.Join(beat.CharactersInvolved, ", ")
			}
			fmt.Fprintf(&b, "- [%s] %s (Characters: %s)\n", beat.BeatType, beat.Description, chars)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
