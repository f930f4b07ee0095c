package narrator

import (
	"strings"
	"testing"

	"github.com/vampirenirmal/storylord/internal/story"
)

var testRoster = []story.CharacterProfile{
	{Name: "Elijah", Role: "protagonist", Description: "a dentist", Motivations: "curiosity", Relationships: "friends with Jasper", Backstory: "lost track of the world"},
	{Name: "Jasper", Role: "protagonist", Description: "a lawyer", Motivations: "winning", Relationships: "friends with Elijah", Backstory: "jumped two grades"},
	{Name: "Riley", Role: "antagonist", Description: "a manipulator", Motivations: "to toy with them", Relationships: "none", Backstory: "made millions"},
}

func TestFormatCharacters(t *testing.T) {
	out := FormatCharacters(testRoster)

	for _, c := range testRoster {
		if !strings.Contains(out, "### "+c.Name+" ("+c.Role+")") {
			t.Errorf("missing header for %s", c.Name)
		}
		if !strings.Contains(out, "**Backstory:** "+c.Backstory) {
			t.Errorf("missing backstory for %s", c.Name)
		}
	}

	// Roster order preserved.
	if strings.Index(out, "Elijah") > strings.Index(out, "Jasper") {
		t.Error("roster order not preserved")
	}
}

func TestFormatInvolvedCharacters(t *testing.T) {
	tests := []struct {
		name     string
		involved []string
		want     []string
		absent   []string
	}{
		{
			name:     "subset of roster",
			involved: []string{"Riley", "Elijah"},
			want:     []string{"### Elijah (protagonist)", "### Riley (antagonist)"},
			absent:   []string{"Jasper"},
		},
		{
			name:     "no characters",
			involved: nil,
			want:     []string{"No specific characters identified for this beat."},
		},
		{
			name:     "unknown name silently skipped",
			involved: []string{"Nobody"},
			want:     []string{"No specific characters identified for this beat."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			beat := story.StoryBeat{BeatType: story.BeatConversation, CharactersInvolved: tt.involved}
			out := FormatInvolvedCharacters(beat, testRoster)

			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out, a) {
					t.Errorf("output should not contain %q:\n%s", a, out)
				}
			}
		})
	}
}

func TestFormatInvolvedCharactersRosterOrder(t *testing.T) {
	// Beat lists characters in reverse roster order; output must follow
	// roster order.
	beat := story.StoryBeat{CharactersInvolved: []string{"Riley", "Elijah"}}
	out := FormatInvolvedCharacters(beat, testRoster)

	if strings.Index(out, "Elijah") > strings.Index(out, "Riley") {
		t.Errorf("expected roster order, got:\n%s", out)
	}
}

func TestFormatInvolvedCharactersOmitsBackstory(t *testing.T) {
	beat := story.StoryBeat{CharactersInvolved: []string{"Elijah"}}
	out := FormatInvolvedCharacters(beat, testRoster)

	if strings.Contains(out, "Backstory") {
		t.Errorf("involved-character block should omit backstory:\n%s", out)
	}
}

func TestFormatPriorContext(t *testing.T) {
	events := []story.PlotEvent{
		{
			Title:   "The Arrival",
			Summary: "They arrive in town.",
			Beats: []story.StoryBeat{
				{Description: "The car breaks down", BeatType: story.BeatOccurrence, CharactersInvolved: []string{"Elijah", "Jasper"}},
				{Description: "They argue", BeatType: story.BeatConversation, CharactersInvolved: []string{"Elijah", "Jasper"}},
			},
		},
		{
			Title:   "The Trap",
			Summary: "The town closes in.",
			Beats: []story.StoryBeat{
				{Description: "Riley watches", BeatType: story.BeatOccurrence, CharactersInvolved: []string{"Riley"}},
				{Description: "Elijah decides to dig", BeatType: story.BeatDecision, CharactersInvolved: []string{"Elijah"}},
			},
		},
	}

	t.Run("first beat of first event returns sentinel", func(t *testing.T) {
		out := FormatPriorContext(nil, events[0], 0)
		if out != "This is the beginning of the story. No prior context." {
			t.Errorf("unexpected sentinel: %q", out)
		}
	})

	t.Run("later beat of first event lists earlier beats only", func(t *testing.T) {
		out := FormatPriorContext(nil, events[0], 1)
		if !strings.Contains(out, "### Plot Event 1 (Current): The Arrival") {
			t.Errorf("missing current event header:\n%s", out)
		}
		if !strings.Contains(out, "The car breaks down") {
			t.Errorf("missing earlier beat:\n%s", out)
		}
		if strings.Contains(out, "They argue") {
			t.Errorf("current beat leaked into prior context:\n%s", out)
		}
	})

	t.Run("second event includes all beats of first", func(t *testing.T) {
		out := FormatPriorContext(events[:1], events[1], 0)
		if !strings.Contains(out, "### Plot Event 1: The Arrival") {
			t.Errorf("missing prior event header:\n%s", out)
		}
		if !strings.Contains(out, "They argue") || !strings.Contains(out, "The car breaks down") {
			t.Errorf("missing prior event beats:\n%s", out)
		}
		if strings.Contains(out, "Riley watches") {
			t.Errorf("current event beat leaked:\n%s", out)
		}
	})

	t.Run("beat lines carry type and characters", func(t *testing.T) {
		out := FormatPriorContext(events[:1], events[1], 1)
		if !strings.Contains(out, "- [occurrence] The car breaks down (Characters: Elijah, Jasper)") {
			t.Errorf("beat line malformed:\n%s", out)
		}
		if !strings.Contains(out, "### Plot Event 2 (Current): The Trap") {
			t.Errorf("missing current event numbering:\n%s", out)
		}
	})
}

func TestFormatPriorNarration(t *testing.T) {
	t.Run("empty corpus returns sentinel", func(t *testing.T) {
		out := FormatPriorNarration(nil)
		if out != "No narrative has been written yet. This is the first beat." {
			t.Errorf("unexpected sentinel: %q", out)
		}
	})

	t.Run("corpus order with reference labels", func(t *testing.T) {
		corpus := []story.BeatNarration{
			{BeatReference: "Event 1, Beat 1", NarrativeText: "First text."},
			{BeatReference: "Event 1, Beat 2", NarrativeText: "Second text."},
		}
		out := FormatPriorNarration(corpus)

		if !strings.Contains(out, "--- Event 1, Beat 1 ---\nFirst text.") {
			t.Errorf("first narration malformed:\n%s", out)
		}
		if strings.Index(out, "First text.") > strings.Index(out, "Second text.") {
			t.Errorf("corpus order not preserved:\n%s", out)
		}
	})
}
