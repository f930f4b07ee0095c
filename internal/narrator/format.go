package narrator

import (
	"fmt"
	"strings"

	"github.com/vampirenirmal/storylord/internal/story"
)

// Context formatters render pipeline state into the text blocks consumed by
// the generation and evaluation prompts. All of them are deterministic, free
// of side effects, and return a fixed sentinel instead of failing on empty
// input.

// FormatCharacters renders the full roster as labeled profile blocks, in
// roster order.
func FormatCharacters(roster []story.CharacterProfile) string {
	var b strings.Builder
	for _, c := range roster {
		fmt.Fprintf(&b, "### %s (%s)\n", c.Name, c.Role)
		fmt.Fprintf(&b, "**Description:** %s\n", c.Description)
		fmt.Fprintf(&b, "**Motivations:** %s\n", c.Motivations)
		fmt.Fprintf(&b, "**Relationships:** %s\n", c.Relationships)
		fmt.Fprintf(&b, "**Backstory:** %s\n", c.Backstory)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatInvolvedCharacters renders the profiles of the characters named in
// the beat. Membership is exact name match; output follows roster order, not
// beat order. Backstory is omitted to keep the generation prompt focused on
// present behavior.
func FormatInvolvedCharacters(beat story.StoryBeat, roster []story.CharacterProfile) string {
	involved := make(map[string]bool, len(beat.CharactersInvolved))
	for _, name := range beat.CharactersInvolved {
		involved[name] = true
	}

	var b strings.Builder
	found := false
	for _, c := range roster {
		if !involved[c.Name] {
			continue
		}
		found = true
		fmt.Fprintf(&b, "### %s (%s)\n", c.Name, c.Role)
		fmt.Fprintf(&b, "**Description:** %s\n", c.Description)
		fmt.Fprintf(&b, "**Motivations:** %s\n", c.Motivations)
		fmt.Fprintf(&b, "**Relationships:** %s\n", c.Relationships)
		b.WriteString("\n")
	}

	if !found {
		return "No specific characters identified for this beat."
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPriorContext renders every beat that precedes the current one in
// document order: all beats of all earlier plot events, then the beats of the
// current event with index below currentBeatIdx.
func FormatPriorContext(priorEvents []story.PlotEvent, currentEvent story.PlotEvent, currentBeatIdx int) string {
	if len(priorEvents) == 0 && currentBeatIdx == 0 {
		return "This is the beginning of the story. No prior context."
	}

	var b strings.Builder

	for i, event := range priorEvents {
		fmt.Fprintf(&b, "### Plot Event %d: %s\n", i+1, event.Title)
		fmt.Fprintf(&b, "%s\n\n", event.Summary)
		for _, beat := range event.Beats {
			writeBeatLine(&b, beat)
		}
		b.WriteString("\n")
	}

	if currentBeatIdx > 0 {
		eventNum := len(priorEvents) + 1
		fmt.Fprintf(&b, "### Plot Event %d (Current): %s\n", eventNum, currentEvent.Title)
		fmt.Fprintf(&b, "%s\n\n", currentEvent.Summary)
		for _, beat := range currentEvent.Beats[:currentBeatIdx] {
			writeBeatLine(&b, beat)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatPriorNarration renders every finalized narration in corpus order,
// each introduced by its beat reference label.
func FormatPriorNarration(corpus []story.BeatNarration) string {
	if len(corpus) == 0 {
		return "No narrative has been written yet. This is the first beat."
	}

	var b strings.Builder
	for _, n := range corpus {
		fmt.Fprintf(&b, "--- %s ---\n", n.BeatReference)
		b.WriteString(n.NarrativeText)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeBeatLine(b *strings.Builder, beat story.StoryBeat) {
	chars := "None"
	if len(beat.CharactersInvolved) > 0 {
		chars = strings.Join(beat.CharactersInvolved, ", ")
	}
	fmt.Fprintf(b, "- [%s] %s (Characters: %s)\n", beat.BeatType, beat.Description, chars)
}
