// Package character implements character agents: LLM-backed personas that
// speak, think, choose, and answer questions in character, with memory that
// carries across interactions. Agent types differ in how they turn numeric
// personality properties into a persona description.
package character

import (
	"context"

	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

// SpeakInput asks the character for dialogue.
type SpeakInput struct {
	SceneContext        string
	ConversationHistory []string
	Prompt              string
}

// ThinkInput asks the character for internal thoughts.
type ThinkInput struct {
	SceneContext string
	Situation    string
}

// ChooseInput asks the character to pick one of several options.
type ChooseInput struct {
	SceneContext string
	Choices      []string
	Context      string
}

// AnswerInput asks the character a question on behalf of another agent.
type AnswerInput struct {
	Question    string
	AskingAgent string
	Context     string
}

// Response is one in-character reply.
type Response struct {
	Content        string `json:"content"`
	EmotionalState string `json:"emotional_state"`
	InternalNotes  string `json:"internal_notes"`
}

// Memory is a character's record of notable interactions, oldest first. It is
// exported and restored whole so a cast can survive a session boundary.
type Memory struct {
	Events []string `json:"events"`
}

// Agent is a configured character instance.
type Agent interface {
	ID() string
	Memory() Memory
	RestoreMemory(Memory)

	Speak(ctx context.Context, input SpeakInput) (Response, error)
	Think(ctx context.Context, input ThinkInput) (Response, error)
	Choose(ctx context.Context, input ChooseInput) (Response, error)
	Answer(ctx context.Context, input AnswerInput) (Response, error)
}

// Property documents one numeric personality property an agent type accepts.
// Values range 0 to 100; missing properties take Default.
type Property struct {
	Name        string
	Description string
	Default     int
}

// Type creates character agents of one personality model.
type Type interface {
	Name() string
	Properties() []Property
	New(id string, profile story.CharacterProfile, properties map[string]int, instructions string, ai core.Agent) Agent
}

// propertyValue reads a property with its default, clamped to 0..100.
func propertyValue(properties map[string]int, name string, def int) int {
	v, ok := properties[name]
	if !ok {
		v = def
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
