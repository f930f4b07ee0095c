package architect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

// eventAgent answers each generation call with a distinct plot event and
// records the user prompts it saw.
type eventAgent struct {
	calls    int
	prompts  []string
	failAt   int   // 1-based call to fail; 0 disables
	failWith error // error returned at failAt
}

func (e *eventAgent) Complete(ctx context.Context, system, user string) (string, error) {
	return e.CompleteJSON(ctx, system, user)
}

func (e *eventAgent) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	e.calls++
	e.prompts = append(e.prompts, user)
	if e.failAt > 0 && e.calls == e.failAt {
		return "", e.failWith
	}

	event := story.PlotEvent{
		Title:   fmt.Sprintf("Event Title %d", e.calls),
		Summary: fmt.Sprintf("Summary of event %d.", e.calls),
		Beats: []story.StoryBeat{
			{
				Description:        fmt.Sprintf("Beat for event %d", e.calls),
				BeatType:           story.BeatOccurrence,
				CharactersInvolved: []string{"Elijah"},
			},
		},
	}
	out, _ := json.Marshal(event)
	return string(out), nil
}

func testInput(numEvents int) Input {
	return Input{
		StoryIdea: "A lighthouse keeper hides a secret.",
		Characters: []story.CharacterProfile{
			{Name: "Elijah", Description: "the keeper", Role: "protagonist", Motivations: "redemption"},
		},
		NumPlotEvents: numEvents,
		BeatsPerEvent: story.BeatRange{Min: 2, Max: 4},
		Tone:          "melancholy",
	}
}

func TestGenerateAccumulatesPreviousEvents(t *testing.T) {
	ag := &eventAgent{}
	arch := New(ag)

	result, err := arch.Generate(context.Background(), testInput(3))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.PlotEvents) != 3 {
		t.Fatalf("got %d plot events, want 3", len(result.PlotEvents))
	}
	if ag.calls != 3 {
		t.Fatalf("agent called %d times, want 3", ag.calls)
	}

	// First prompt carries the no-previous-events marker.
	if !strings.Contains(ag.prompts[0], "None (this is the first event)") {
		t.Errorf("first prompt missing empty-previous marker:\n%s", ag.prompts[0])
	}

	// Third prompt carries both earlier events, titles and beats.
	third := ag.prompts[2]
	for _, want := range []string{
		"### Event 1: Event Title 1",
		"### Event 2: Event Title 2",
		"- [occurrence] Beat for event 1 (Characters: Elijah)",
		"Generate plot event 3 of 3.",
		"Create between 2 and 4 story beats",
	} {
		if !strings.Contains(third, want) {
			t.Errorf("third prompt missing %q:\n%s", want, third)
		}
	}
}

func TestGenerateFailureAbortsRun(t *testing.T) {
	cause := errors.New("upstream unavailable")
	ag := &eventAgent{failAt: 2, failWith: cause}
	arch := New(ag)

	result, err := arch.Generate(context.Background(), testInput(3))
	if err == nil {
		t.Fatal("expected error")
	}
	if !core.IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap cause: %v", err)
	}
	if !strings.Contains(err.Error(), "plot event 2") {
		t.Errorf("error does not name the failing event: %v", err)
	}
	if len(result.PlotEvents) != 0 {
		t.Errorf("architecture should be empty on failure, has %d events", len(result.PlotEvents))
	}
}

func TestGenerateRejectsNonPositiveEventCount(t *testing.T) {
	arch := New(&eventAgent{})

	_, err := arch.Generate(context.Background(), testInput(0))
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGenerateDecodeFailure(t *testing.T) {
	arch := New(badJSONAgent{})

	_, err := arch.Generate(context.Background(), testInput(1))
	if !core.IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %T: %v", err, err)
	}
}

func TestGenerateRejectsEmptyEvent(t *testing.T) {
	arch := New(emptyEventAgent{})

	_, err := arch.Generate(context.Background(), testInput(1))
	if err == nil {
		t.Fatal("expected error for event with no beats")
	}
	if !strings.Contains(err.Error(), "missing title or beats") {
		t.Errorf("unexpected error: %v", err)
	}
}

type badJSONAgent struct{}

func (badJSONAgent) Complete(ctx context.Context, system, user string) (string, error) {
	return "I couldn't produce JSON, sorry.", nil
}

func (b badJSONAgent) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return b.Complete(ctx, system, user)
}

type emptyEventAgent struct{}

func (emptyEventAgent) Complete(ctx context.Context, system, user string) (string, error) {
	return `{"title": "A Title", "summary": "No beats.", "beats": []}`, nil
}

func (e emptyEventAgent) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return e.Complete(ctx, system, user)
}
