package story

import "fmt"

// Shared types used across the architect, narrator, and editor phases.

// BeatType classifies a story beat within a plot event.
type BeatType string

const (
	BeatConversation     BeatType = "conversation"
	BeatAction           BeatType = "action"
	BeatOccurrence       BeatType = "occurrence"
	BeatInternalDialogue BeatType = "internal_dialogue"
	BeatRevelation       BeatType = "revelation"
	BeatDecision         BeatType = "decision"
)

// BeatTypes lists every valid beat type in documentation order.
var BeatTypes = []BeatType{
	BeatConversation,
	BeatAction,
	BeatOccurrence,
	BeatInternalDialogue,
	BeatRevelation,
	BeatDecision,
}

// Valid reports whether the beat type is one of the fixed enumeration.
func (b BeatType) Valid() bool {
	for _, t := range BeatTypes {
		if b == t {
			return true
		}
	}
	return false
}

// CharacterProfile describes one character in the story. Profiles are frozen
// for the duration of a run.
type CharacterProfile struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	Role          string `json:"role" yaml:"role"`
	Motivations   string `json:"motivations" yaml:"motivations"`
	Relationships string `json:"relationships" yaml:"relationships"`
	Backstory     string `json:"backstory" yaml:"backstory"`
}

// StoryBeat is the smallest narrative unit scheduled for prose generation.
type StoryBeat struct {
	Description        string   `json:"description"`
	BeatType           BeatType `json:"beat_type"`
	CharactersInvolved []string `json:"characters_involved"`
}

// PlotEvent is an ordered group of beats representing one major story movement.
type PlotEvent struct {
	Title   string      `json:"title"`
	Summary string      `json:"summary"`
	Beats   []StoryBeat `json:"beats"`
}

// StoryArchitecture is the complete structural skeleton of a story. It is
// produced by the architect phase and read-only afterwards.
type StoryArchitecture struct {
	PlotEvents []PlotEvent `json:"plot_events"`
}

// TotalBeats returns the number of beats across all plot events.
func (a StoryArchitecture) TotalBeats() int {
	n := 0
	for _, event := range a.PlotEvents {
		n += len(event.Beats)
	}
	return n
}

// BeatNarration is the narrative prose produced for one story beat. The
// narrator mutates NarrativeText only during the beat's own revision rounds;
// once appended to the corpus the narration is never edited again.
type BeatNarration struct {
	NarrativeText string `json:"narrative_text"`
	BeatReference string `json:"beat_reference"`
}

// ConflictEvaluation is the result of checking a draft narration against the
// established corpus. When ConflictsFound is empty, RevisedNarrative must
// equal the evaluated text unchanged.
type ConflictEvaluation struct {
	ConflictsFound   []string `json:"conflicts_found"`
	RevisedNarrative string   `json:"revised_narrative"`
}

// NarratedStory is the ordered, append-only corpus of finalized narrations
// for one run.
type NarratedStory struct {
	Narrations []BeatNarration `json:"narrations"`
}

// BeatRange is an inclusive (min, max) range for beats per plot event.
type BeatRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// StoryInput holds the run parameters supplied by the user.
type StoryInput struct {
	StoryIdea     string             `yaml:"story_idea"`
	Characters    []CharacterProfile `yaml:"characters"`
	NumPlotEvents int                `yaml:"num_plot_events"`
	BeatsPerEvent BeatRange          `yaml:"beats_per_event"`
	Tone          string             `yaml:"tone"`
	OutputFile    string             `yaml:"output_file"`
	Architect     string             `yaml:"architect"`
	Narrator      string             `yaml:"narrator"`
	Editor        string             `yaml:"editor"`
}

// Validate checks the run parameters before any generation starts.
func (in StoryInput) Validate() error {
	if in.StoryIdea == "" {
		return fmt.Errorf("story_idea is required")
	}
	if len(in.Characters) == 0 {
		return fmt.Errorf("at least one character is required")
	}
	seen := make(map[string]bool, len(in.Characters))
	for _, c := range in.Characters {
		if c.Name == "" {
			return fmt.Errorf("character name is required")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate character name %q", c.Name)
		}
		seen[c.Name] = true
	}
	if in.NumPlotEvents <= 0 {
		return fmt.Errorf("num_plot_events must be positive")
	}
	if in.BeatsPerEvent.Min < 1 || in.BeatsPerEvent.Max < in.BeatsPerEvent.Min {
		return fmt.Errorf("beats_per_event must satisfy 1 <= min <= max, got (%d, %d)",
			in.BeatsPerEvent.Min, in.BeatsPerEvent.Max)
	}
	if in.OutputFile == "" {
		return fmt.Errorf("output_file is required")
	}
	return nil
}

// ValidateArchitecture checks a generated architecture for structural
// problems: empty events, unknown beat types, and beats whose involved
// characters are missing from the roster. The narrator itself does not
// defend against these, so they are surfaced here at load time.
func ValidateArchitecture(arch StoryArchitecture, roster []CharacterProfile) error {
	known := make(map[string]bool, len(roster))
	for _, c := range roster {
		known[c.Name] = true
	}

	if len(arch.PlotEvents) == 0 {
		return fmt.Errorf("architecture contains no plot events")
	}

	for i, event := range arch.PlotEvents {
		if len(event.Beats) == 0 {
			return fmt.Errorf("plot event %d (%q) contains no beats", i+1, event.Title)
		}
		for j, beat := range event.Beats {
			if !beat.BeatType.Valid() {
				return fmt.Errorf("plot event %d, beat %d: unknown beat type %q", i+1, j+1, beat.BeatType)
			}
			for _, name := range beat.CharactersInvolved {
				if !known[name] {
					return fmt.Errorf("plot event %d, beat %d: character %q not in roster", i+1, j+1, name)
				}
			}
		}
	}

	return nil
}
