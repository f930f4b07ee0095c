package architect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vampirenirmal/storylord/internal/agent"
	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/narrator"
	"github.com/vampirenirmal/storylord/internal/story"
)

// Input holds the parameters for one architecture run.
type Input struct {
	StoryIdea     string
	Characters    []story.CharacterProfile
	NumPlotEvents int
	BeatsPerEvent story.BeatRange
	Tone          string
}

// Architect generates a story architecture one plot event at a time, feeding
// every previously generated event back into the next prompt so events build
// on each other.
type Architect struct {
	agent  core.Agent
	logger *slog.Logger
}

// Option customizes an Architect.
type Option func(*Architect)

// WithLogger configures a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Architect) {
		a.logger = logger
	}
}

// New creates an Architect backed by the given text-generation agent.
func New(ag core.Agent, opts ...Option) *Architect {
	a := &Architect{
		agent:  ag,
		logger: slog.Default().With("component", "architect"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the registry name of this architect implementation.
func (a *Architect) Name() string {
	return "default"
}

// Generate produces the full story architecture. Each plot event is one
// generation call; a failure aborts the run with no partial architecture.
func (a *Architect) Generate(ctx context.Context, input Input) (story.StoryArchitecture, error) {
	if input.NumPlotEvents <= 0 {
		return story.StoryArchitecture{}, fmt.Errorf("%w: num_plot_events must be positive", core.ErrInvalidInput)
	}

	a.logger.Info("starting architecture generation",
		"num_plot_events", input.NumPlotEvents,
		"characters", len(input.Characters),
	)

	charactersText := narrator.FormatCharacters(input.Characters)
	var plotEvents []story.PlotEvent

	for i := 0; i < input.NumPlotEvents; i++ {
		event, err := a.generateEvent(ctx, input, charactersText, plotEvents, i+1)
		if err != nil {
			return story.StoryArchitecture{},
				&core.GenerationError{Phase: "architect", Cause: fmt.Errorf("plot event %d: %w", i+1, err)}
		}

		a.logger.Info("plot event generated",
			"event", i+1,
			"title", event.Title,
			"beats", len(event.Beats),
		)
		plotEvents = append(plotEvents, event)
	}

	return story.StoryArchitecture{PlotEvents: plotEvents}, nil
}

func (a *Architect) generateEvent(ctx context.Context, input Input, charactersText string, previous []story.PlotEvent, eventNum int) (story.PlotEvent, error) {
	userPrompt, err := renderUserPrompt(promptData{
		StoryIdea:      input.StoryIdea,
		Tone:           input.Tone,
		CharactersText: charactersText,
		CurrentEvent:   eventNum,
		TotalEvents:    input.NumPlotEvents,
		MinBeats:       input.BeatsPerEvent.Min,
		MaxBeats:       input.BeatsPerEvent.Max,
		PreviousEvents: formatPreviousEvents(previous),
	})
	if err != nil {
		return story.PlotEvent{}, err
	}

	raw, err := a.agent.CompleteJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return story.PlotEvent{}, err
	}

	var event story.PlotEvent
	if err := json.Unmarshal([]byte(agent.CleanJSONResponse(raw)), &event); err != nil {
		return story.PlotEvent{}, fmt.Errorf("decoding plot event response: %w", err)
	}
	if event.Title == "" || len(event.Beats) == 0 {
		return story.PlotEvent{}, fmt.Errorf("plot event response missing title or beats")
	}

	return event, nil
}
