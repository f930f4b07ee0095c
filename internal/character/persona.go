package character

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/vampirenirmal/storylord/internal/agent"
	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

var systemTmpl = template.Must(template.New("character").Parse(`You are roleplaying {{.Name}}, a character in a story. Stay in character at all times. Never break character or refer to yourself as an AI.

## Identity

**Role:** {{.Role}}
**Description:** {{.Description}}
**Motivations:** {{.Motivations}}
**Relationships:** {{.Relationships}}
**Backstory:** {{.Backstory}}

## Personality

{{.Personality}}
{{if .Instructions}}
## Behavioral Instructions

{{.Instructions}}
{{end}}{{if .MemoryEvents}}
## What You Remember

{{range .MemoryEvents}}- {{.}}
{{end}}{{end}}
Respond with a single JSON object with this shape:
{"content": "<your in-character response>", "emotional_state": "<one or two words>", "internal_notes": "<private thoughts you would not say aloud>"}`))

type systemData struct {
	Name          string
	Role          string
	Description   string
	Motivations   string
	Relationships string
	Backstory     string
	Personality   string
	Instructions  string
	MemoryEvents  []string
}

// persona is the shared character agent implementation. Types differ only in
// the personality description they derive from their properties.
type persona struct {
	id           string
	profile      story.CharacterProfile
	personality  string
	instructions string
	ai           core.Agent
	memory       Memory
	logger       *slog.Logger
}

func newPersona(id string, profile story.CharacterProfile, personality, instructions string, ai core.Agent) *persona {
	return &persona{
		id:           id,
		profile:      profile,
		personality:  personality,
		instructions: instructions,
		ai:           ai,
		logger:       slog.Default().With("component", "character", "character_id", id),
	}
}

func (p *persona) ID() string {
	return p.id
}

func (p *persona) Memory() Memory {
	events := make([]string, len(p.memory.Events))
	copy(events, p.memory.Events)
	return Memory{Events: events}
}

func (p *persona) RestoreMemory(m Memory) {
	p.memory = m
}

func (p *persona) Speak(ctx context.Context, input SpeakInput) (Response, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "## Scene\n\n%s\n\n", input.SceneContext)
	if len(input.ConversationHistory) > 0 {
		b.WriteString("## Conversation So Far\n\n")
		for _, line := range input.ConversationHistory {
			fmt.Fprintf(&b, "%s\n", line)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Say your next line. %s", input.Prompt)

	return p.complete(ctx, "speak", b.String())
}

func (p *persona) Think(ctx context.Context, input ThinkInput) (Response, error) {
	prompt := fmt.Sprintf("## Scene\n\n%s\n\n## Situation\n\n%s\n\nWhat goes through your mind? Respond with your private thoughts, not spoken words.",
		input.SceneContext, input.Situation)
	return p.complete(ctx, "think", prompt)
}

func (p *persona) Choose(ctx context.Context, input ChooseInput) (Response, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "## Scene\n\n%s\n\n## Decision\n\n%s\n\n## Your Options\n\n", input.SceneContext, input.Context)
	for i, choice := range input.Choices {
		fmt.Fprintf(&b, "%d. %s\n", i+1, choice)
	}
	b.WriteString("\nPick exactly one option and state it, in character, with your reasoning.")

	return p.complete(ctx, "choose", b.String())
}

func (p *persona) Answer(ctx context.Context, input AnswerInput) (Response, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s asks you: %s\n", input.AskingAgent, input.Question)
	if input.Context != "" {
		fmt.Fprintf(&b, "\n## Context\n\n%s\n", input.Context)
	}
	b.WriteString("\nAnswer in character. You may be evasive or untruthful if that is what this character would do.")

	return p.complete(ctx, "answer", b.String())
}

func (p *persona) complete(ctx context.Context, verb, userPrompt string) (Response, error) {
	system, err := p.renderSystemPrompt()
	if err != nil {
		return Response{}, err
	}

	raw, err := p.ai.CompleteJSON(ctx, system, userPrompt)
	if err != nil {
		return Response{}, &core.GenerationError{Phase: "character", Cause: fmt.Errorf("%s as %s: %w", verb, p.id, err)}
	}

	var resp Response
	if err := json.Unmarshal([]byte(agent.CleanJSONResponse(raw)), &resp); err != nil {
		return Response{}, &core.GenerationError{Phase: "character", Cause: fmt.Errorf("decoding %s response: %w", verb, err)}
	}
	if resp.Content == "" {
		return Response{}, &core.GenerationError{Phase: "character", Cause: fmt.Errorf("%s response contains no content", verb)}
	}
	if resp.EmotionalState == "" {
		resp.EmotionalState = "neutral"
	}

	p.remember(verb, resp)

	p.logger.Debug("character interaction complete",
		"verb", verb,
		"emotional_state", resp.EmotionalState,
		"content_length", len(resp.Content),
	)

	return resp, nil
}

const memoryEventLimit = 160

func (p *persona) remember(verb string, resp Response) {
	event := resp.Content
	if resp.InternalNotes != "" {
		event = resp.InternalNotes
	}
	if len(event) > memoryEventLimit {
		event = event[:memoryEventLimit]
	}
	p.memory.Events = append(p.memory.Events, fmt.Sprintf("[%s] %s", verb, event))
}

func (p *persona) renderSystemPrompt() (string, error) {
	var buf bytes.Buffer
	err := systemTmpl.Execute(&buf, systemData{
		Name:          p.profile.Name,
		Role:          p.profile.Role,
		Description:   p.profile.Description,
		Motivations:   p.profile.Motivations,
		Relationships: p.profile.Relationships,
		Backstory:     p.profile.Backstory,
		Personality:   p.personality,
		Instructions:  p.instructions,
		MemoryEvents:  p.memory.Events,
	})
	if err != nil {
		return "", fmt.Errorf("executing character prompt template: %w", err)
	}
	return buf.String(), nil
}
