package editor

import (
	"context"
	"log/slog"

	"github.com/vampirenirmal/storylord/internal/core"
)

// Input carries the text for one edit pass.
type Input struct {
	Text string
}

// Edited is the result of one edit pass.
type Edited struct {
	Text string
}

// Editor improves and refines a block of prose.
type Editor interface {
	Name() string
	Edit(ctx context.Context, input Input) (Edited, error)
}

const defaultSystemPrompt = `Improve this text for clarity, style, and quality. Preserve the meaning, the plot, and all dialogue. Return only the improved text with no commentary.`

const simileSmasherSystemPrompt = `Follow these guidelines to improve text
- Do not modify any dialogue
- Find all similes in the text and convert them to direct metaphors. A simile compares two things using "like" or "as" (e.g., "Her eyes were like stars"). A metaphor states that one thing IS another (e.g., "Her eyes were stars").
- If a sentence uses a form of the verb "to be" (e.g. "is", "was", "are"), generate an alternative of the sentence that retains the same meaning and uses an action verb

Make only necessary changes. Do not change text that lies outside the guidelines defined above. Do not change any dialogue.
Return only the edited text with no commentary.`

// promptEditor is an LLM-backed editor distinguished only by its system
// prompt.
type promptEditor struct {
	name         string
	systemPrompt string
	agent        core.Agent
	logger       *slog.Logger
}

// NewDefault creates the general style-pass editor.
func NewDefault(agent core.Agent) Editor {
	return &promptEditor{
		name:         "default",
		systemPrompt: defaultSystemPrompt,
		agent:        agent,
		logger:       slog.Default().With("component", "editor", "editor", "default"),
	}
}

// NewSimileSmasher creates the editor that converts similes into direct
// metaphors and rewrites "to be" constructions around action verbs.
func NewSimileSmasher(agent core.Agent) Editor {
	return &promptEditor{
		name:         "simile-smasher",
		systemPrompt: simileSmasherSystemPrompt,
		agent:        agent,
		logger:       slog.Default().With("component", "editor", "editor", "simile-smasher"),
	}
}

func (e *promptEditor) Name() string {
	return e.name
}

// Edit runs one pass over the text. Plain-text completion; the prose is the
// whole response.
func (e *promptEditor) Edit(ctx context.Context, input Input) (Edited, error) {
	out, err := e.agent.Complete(ctx, e.systemPrompt, input.Text)
	if err != nil {
		return Edited{}, &core.GenerationError{Phase: "editor", Cause: err}
	}

	e.logger.Info("edit complete",
		"input_length", len(input.Text),
		"output_length", len(out),
	)

	return Edited{Text: out}, nil
}
