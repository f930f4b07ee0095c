// Package pipeline runs the full story generation flow: architecture,
// narration, editing, artifact persistence. It owns run identity and
// checkpoint bookkeeping; the phases stay ignorant of both.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vampirenirmal/storylord/internal/architect"
	"github.com/vampirenirmal/storylord/internal/checkpoint"
	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/editor"
	"github.com/vampirenirmal/storylord/internal/narrator"
	"github.com/vampirenirmal/storylord/internal/registry"
	"github.com/vampirenirmal/storylord/internal/storage"
	"github.com/vampirenirmal/storylord/internal/story"
)

// Pipeline wires the phases together for one or more runs. Concurrent runs
// are safe as long as each call to Run gets its own context; no state is
// shared between runs except the checkpoint store and storage, which are
// both append-only from the pipeline's perspective.
type Pipeline struct {
	registry      *registry.Registry
	agent         core.Agent
	storage       core.Storage
	checkpoints   *checkpoint.Store
	editorWorkers int
	logger        *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithCheckpoints enables checkpoint recording for resumable salvage.
func WithCheckpoints(store *checkpoint.Store) Option {
	return func(p *Pipeline) {
		p.checkpoints = store
	}
}

// WithEditorWorkers bounds the editor fan-out.
func WithEditorWorkers(workers int) Option {
	return func(p *Pipeline) {
		p.editorWorkers = workers
	}
}

// WithLogger configures a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline. The registry decides which agent variants serve
// each phase; the storage receives run artifacts.
func New(reg *registry.Registry, agent core.Agent, store core.Storage, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:      reg,
		agent:         agent,
		storage:       store,
		editorWorkers: 1,
		logger:        slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of one run. On failure it carries whatever was
// produced before the failing step, so callers can salvage the committed
// corpus.
type Result struct {
	RunID            string
	RunDir           string
	Architecture     story.StoryArchitecture
	Narrated         story.NarratedStory
	EditedNarrations []string
	ArchitecturePath string
	NarrativePath    string
	EditsPath        string
}

// Run executes the full flow for one StoryInput.
func (p *Pipeline) Run(ctx context.Context, input story.StoryInput) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}

	architectName := defaultName(input.Architect)
	narratorName := defaultName(input.Narrator)
	editorName := defaultName(input.Editor)

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	// Checkpoint writes must survive the run context being cancelled
	// mid-beat, or a cancellation would lose the very beats it is
	// supposed to preserve.
	bookkeeping := context.WithoutCancel(ctx)

	arch, err := p.registry.Architect(architectName, p.agent)
	if err != nil {
		return nil, err
	}
	nar, err := p.registry.Narrator(narratorName, p.agent, p.narratorOptions(bookkeeping, logger, runID)...)
	if err != nil {
		return nil, err
	}
	ed, err := p.registry.Editor(editorName, p.agent)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  runID,
		RunDir: storage.RunPath(runID, input.OutputFile),
	}
	logger.Info("starting run",
		"architect", architectName,
		"narrator", narratorName,
		"editor", editorName,
		"num_plot_events", input.NumPlotEvents,
	)

	if p.checkpoints != nil {
		if err := p.checkpoints.CreateRun(bookkeeping, runID, input.OutputFile); err != nil {
			return nil, err
		}
	}

	// Architecture phase.
	architecture, err := arch.Generate(ctx, architect.Input{
		StoryIdea:     input.StoryIdea,
		Characters:    input.Characters,
		NumPlotEvents: input.NumPlotEvents,
		BeatsPerEvent: input.BeatsPerEvent,
		Tone:          input.Tone,
	})
	if err != nil {
		p.markFailed(bookkeeping, logger, runID)
		return result, err
	}
	if err := story.ValidateArchitecture(architecture, input.Characters); err != nil {
		p.markFailed(bookkeeping, logger, runID)
		return result, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	result.Architecture = architecture

	if err := p.saveArchitecture(ctx, result, input.OutputFile); err != nil {
		p.markFailed(bookkeeping, logger, runID)
		return result, err
	}
	if p.checkpoints != nil {
		if err := p.checkpoints.SaveArchitecture(bookkeeping, runID, architecture); err != nil {
			logger.Warn("checkpointing architecture failed", "error", err)
		}
		p.setStatus(bookkeeping, logger, runID, checkpoint.StatusNarrating)
	}

	// Narration phase. Each beat is checkpointed at commit time through the
	// observer attached at narrator resolution, so a run killed mid-walk
	// still leaves its committed prefix on disk. Generate returns the same
	// prefix in-process on failure.
	narrated, narrErr := nar.Generate(ctx, narrator.Input{
		Architecture: architecture,
		Characters:   input.Characters,
		Tone:         input.Tone,
	})
	result.Narrated = narrated
	if narrErr != nil {
		logger.Error("narration halted",
			"committed_beats", len(narrated.Narrations),
			"error", narrErr)
		p.markFailed(bookkeeping, logger, runID)
		return result, narrErr
	}

	// Editing phase.
	if p.checkpoints != nil {
		p.setStatus(bookkeeping, logger, runID, checkpoint.StatusEditing)
	}
	edited, err := editor.EditCorpus(ctx, ed, narrated.Narrations, p.editorWorkers)
	if err != nil {
		p.markFailed(bookkeeping, logger, runID)
		return result, err
	}
	result.EditedNarrations = edited

	if err := p.saveNarrative(ctx, result, input.OutputFile); err != nil {
		p.markFailed(bookkeeping, logger, runID)
		return result, err
	}
	if err := p.saveEditDeltas(ctx, result, input.OutputFile); err != nil {
		p.markFailed(bookkeeping, logger, runID)
		return result, err
	}

	if p.checkpoints != nil {
		p.setStatus(bookkeeping, logger, runID, checkpoint.StatusComplete)
	}

	logger.Info("run complete",
		"beats", len(narrated.Narrations),
		"narrative_path", result.NarrativePath,
	)
	return result, nil
}

// narratorOptions attaches a commit observer that checkpoints each beat as
// the walker commits it. The observer runs inside Generate, between beats,
// so the store always holds the committed prefix of an interrupted run.
func (p *Pipeline) narratorOptions(bookkeeping context.Context, logger *slog.Logger, runID string) []narrator.Option {
	if p.checkpoints == nil {
		return nil
	}
	return []narrator.Option{
		narrator.WithCommitObserver(func(n story.BeatNarration) {
			if err := p.checkpoints.AppendNarration(bookkeeping, runID, n); err != nil {
				logger.Warn("checkpointing narration failed",
					"beat_reference", n.BeatReference,
					"error", err)
			}
		}),
	}
}

func (p *Pipeline) saveArchitecture(ctx context.Context, result *Result, outputName string) error {
	data, err := json.MarshalIndent(result.Architecture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling architecture: %w", err)
	}

	path := filepath.Join(result.RunDir, outputName+"_architecture.json")
	if err := p.storage.Save(ctx, path, data); err != nil {
		return fmt.Errorf("saving architecture: %w", err)
	}
	result.ArchitecturePath = path
	return nil
}

func (p *Pipeline) saveNarrative(ctx context.Context, result *Result, outputName string) error {
	narrative := strings.Join(result.EditedNarrations, "\n\n")

	path := filepath.Join(result.RunDir, outputName+"_narrative.txt")
	if err := p.storage.Save(ctx, path, []byte(narrative)); err != nil {
		return fmt.Errorf("saving narrative: %w", err)
	}
	result.NarrativePath = path
	return nil
}

type beatEdits struct {
	BeatReference string         `json:"beat_reference"`
	Deltas        []editor.Delta `json:"deltas"`
}

func (p *Pipeline) saveEditDeltas(ctx context.Context, result *Result, outputName string) error {
	edits := make([]beatEdits, len(result.EditedNarrations))
	changed := 0
	for i, edited := range result.EditedNarrations {
		original := result.Narrated.Narrations[i]
		edits[i] = beatEdits{
			BeatReference: original.BeatReference,
			Deltas:        editor.ComputeDelta(original.NarrativeText, edited),
		}
		if len(edits[i].Deltas) > 0 {
			changed++
		}
	}

	data, err := json.MarshalIndent(edits, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling edit deltas: %w", err)
	}

	path := filepath.Join(result.RunDir, outputName+"_edits.json")
	if err := p.storage.Save(ctx, path, data); err != nil {
		return fmt.Errorf("saving edit deltas: %w", err)
	}
	result.EditsPath = path
	p.logger.Debug("edit deltas saved", "beats", len(edits), "beats_changed", changed)
	return nil
}

func (p *Pipeline) setStatus(ctx context.Context, logger *slog.Logger, runID, status string) {
	if err := p.checkpoints.SetStatus(ctx, runID, status); err != nil {
		logger.Warn("updating run status failed", "status", status, "error", err)
	}
}

func (p *Pipeline) markFailed(ctx context.Context, logger *slog.Logger, runID string) {
	if p.checkpoints == nil {
		return
	}
	p.setStatus(ctx, logger, runID, checkpoint.StatusFailed)
}

func defaultName(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
