package narrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vampirenirmal/storylord/internal/agent"
	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

// revisionRounds is the fixed number of evaluate/revise passes applied to
// every beat after generation. Running the evaluation twice catches conflicts
// introduced by the first revision itself. This is a fixed-cost policy, not
// an adaptive convergence loop.
const revisionRounds = 2

// Input holds the frozen inputs for one narration run.
type Input struct {
	Architecture story.StoryArchitecture
	Characters   []story.CharacterProfile
	Tone         string
}

// Narrator walks a story architecture beat by beat, in strict document
// order, and produces the narration corpus. Each beat goes through one
// generation call and exactly two evaluation/revision calls before it is
// committed; committed narrations are never touched again.
type Narrator struct {
	agent    core.Agent
	logger   *slog.Logger
	onCommit func(story.BeatNarration)
}

// Option customizes a Narrator.
type Option func(*Narrator)

// WithLogger configures a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Narrator) {
		n.logger = logger
	}
}

// WithCommitObserver registers a callback invoked once per beat, immediately
// after its narration is finalized and appended to the corpus. This is the
// only signal external collaborators get about corpus growth; they never
// mutate the corpus themselves.
func WithCommitObserver(fn func(story.BeatNarration)) Option {
	return func(n *Narrator) {
		n.onCommit = fn
	}
}

// New creates a Narrator backed by the given text-generation agent.
func New(a core.Agent, opts ...Option) *Narrator {
	n := &Narrator{
		agent:  a,
		logger: slog.Default().With("component", "narrator"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the registry name of this narrator implementation.
func (n *Narrator) Name() string {
	return "default"
}

// Generate produces narrative prose for every beat of the architecture.
//
// On failure the walk halts immediately: the in-flight beat is discarded and
// the returned NarratedStory holds exactly the beats committed before the
// failing call, alongside the error. Cancellation is honored at beat
// boundaries only, so a beat's generate/revise/commit sequence is atomic.
func (n *Narrator) Generate(ctx context.Context, input Input) (story.NarratedStory, error) {
	events := input.Architecture.PlotEvents

	n.logger.Info("starting narration",
		"plot_events", len(events),
		"total_beats", input.Architecture.TotalBeats(),
	)

	var corpus []story.BeatNarration

	for eventIdx, event := range events {
		priorEvents := events[:eventIdx]

		for beatIdx, beat := range event.Beats {
			if err := ctx.Err(); err != nil {
				n.logger.Warn("narration cancelled at beat boundary",
					"plot_event", eventIdx+1,
					"beat", beatIdx+1,
					"committed_beats", len(corpus),
				)
				return story.NarratedStory{Narrations: corpus}, err
			}

			beatRef := fmt.Sprintf("Event %d, Beat %d", eventIdx+1, beatIdx+1)
			priorContext := FormatPriorContext(priorEvents, event, beatIdx)

			narration, err := n.generateBeat(ctx, generationContext{
				EventTitle:         event.Title,
				EventSummary:       event.Summary,
				BeatType:           string(beat.BeatType),
				BeatDescription:    beat.Description,
				InvolvedCharacters: FormatInvolvedCharacters(beat, input.Characters),
				Tone:               input.Tone,
				PriorContext:       priorContext,
				PriorNarration:     FormatPriorNarration(corpus),
			})
			if err != nil {
				n.logger.Error("beat generation failed",
					"plot_event", eventIdx+1,
					"beat", beatIdx+1,
					"committed_beats", len(corpus),
					"error", err,
				)
				return story.NarratedStory{Narrations: corpus},
					&core.GenerationError{Phase: "narrator", BeatReference: beatRef, Cause: err}
			}

			// The generation step does not know its position in the
			// document; the reference is assigned here, once, and never
			// reused.
			narration.BeatReference = beatRef

			n.logger.Info("beat iteration complete",
				"plot_event", eventIdx+1,
				"beat", beatIdx+1,
				"iteration", 1,
				"phase", "generate",
			)

			for round := 1; round <= revisionRounds; round++ {
				eval, err := n.evaluateBeat(ctx, evaluationContext{
					CurrentNarrative: narration.NarrativeText,
					BeatType:         string(beat.BeatType),
					BeatDescription:  beat.Description,
					FullCorpus:       FormatPriorNarration(corpus),
					PriorContext:     priorContext,
				})
				if err != nil {
					n.logger.Error("beat evaluation failed",
						"plot_event", eventIdx+1,
						"beat", beatIdx+1,
						"round", round,
						"committed_beats", len(corpus),
						"error", err,
					)
					return story.NarratedStory{Narrations: corpus},
						&core.EvaluationError{BeatReference: beatRef, Round: round, Cause: err}
				}

				narration.NarrativeText = eval.RevisedNarrative

				n.logger.Info("beat iteration complete",
					"plot_event", eventIdx+1,
					"beat", beatIdx+1,
					"iteration", round+1,
					"phase", "evaluate",
					"conflicts", len(eval.ConflictsFound),
				)
			}

			corpus = append(corpus, narration)
			if n.onCommit != nil {
				n.onCommit(narration)
			}
		}
	}

	n.logger.Info("narration complete", "beats", len(corpus))
	return story.NarratedStory{Narrations: corpus}, nil
}

// generateBeat performs one generation call. It does not retry; transient
// failure handling belongs to the agent client.
func (n *Narrator) generateBeat(ctx context.Context, gc generationContext) (story.BeatNarration, error) {
	userPrompt, err := renderPrompt(generationUserTmpl, gc)
	if err != nil {
		return story.BeatNarration{}, err
	}

	raw, err := n.agent.CompleteJSON(ctx, generationSystemPrompt, userPrompt)
	if err != nil {
		return story.BeatNarration{}, err
	}

	var narration story.BeatNarration
	if err := json.Unmarshal([]byte(agent.CleanJSONResponse(raw)), &narration); err != nil {
		return story.BeatNarration{}, fmt.Errorf("decoding generation response: %w", err)
	}
	if narration.NarrativeText == "" {
		return story.BeatNarration{}, fmt.Errorf("generation response contains no narrative text")
	}

	return narration, nil
}

// evaluateBeat performs one evaluation/revision call against the unchanged
// corpus. Same failure semantics as generateBeat.
func (n *Narrator) evaluateBeat(ctx context.Context, ec evaluationContext) (story.ConflictEvaluation, error) {
	userPrompt, err := renderPrompt(evaluationUserTmpl, ec)
	if err != nil {
		return story.ConflictEvaluation{}, err
	}

	raw, err := n.agent.CompleteJSON(ctx, evaluationSystemPrompt, userPrompt)
	if err != nil {
		return story.ConflictEvaluation{}, err
	}

	var eval story.ConflictEvaluation
	if err := json.Unmarshal([]byte(agent.CleanJSONResponse(raw)), &eval); err != nil {
		return story.ConflictEvaluation{}, fmt.Errorf("decoding evaluation response: %w", err)
	}
	if eval.RevisedNarrative == "" {
		return story.ConflictEvaluation{}, fmt.Errorf("evaluation response contains no revised narrative")
	}

	return eval, nil
}
