package character

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

// Cast manages the character agent instances of one session: creation by
// type name, lookup by ID, and memory export/restore across session
// boundaries. Types come from the startup registry; instances are created
// here at runtime.
type Cast struct {
	types  map[string]Type
	agents map[string]Agent
	logger *slog.Logger
}

// NewCast creates a cast with the given agent types available.
func NewCast(types ...Type) *Cast {
	c := &Cast{
		types:  make(map[string]Type, len(types)),
		agents: make(map[string]Agent),
		logger: slog.Default().With("component", "cast"),
	}
	for _, t := range types {
		c.types[t.Name()] = t
	}
	return c
}

// Create instantiates a character agent and adds it to the cast. A second
// Create with the same ID replaces the first.
func (c *Cast) Create(id, typeName string, profile story.CharacterProfile, properties map[string]int, instructions string, ai core.Agent) (Agent, error) {
	t, ok := c.types[typeName]
	if !ok {
		avail := "(none)"
		if names := c.TypeNames(); len(names) > 0 {
			avail = strings.Join(names, ", ")
		}
		return nil, fmt.Errorf("unknown character agent type %q (available: %s)", typeName, avail)
	}

	agent := t.New(id, profile, properties, instructions, ai)
	c.agents[id] = agent

	c.logger.Info("character created",
		"character_id", id,
		"type", typeName,
	)
	return agent, nil
}

// Get looks up a character by ID.
func (c *Cast) Get(id string) (Agent, bool) {
	agent, ok := c.agents[id]
	return agent, ok
}

// IDs lists the cast's character IDs, sorted.
func (c *Cast) IDs() []string {
	out := make([]string, 0, len(c.agents))
	for id := range c.agents {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// TypeNames lists the available agent type names, sorted.
func (c *Cast) TypeNames() []string {
	out := make([]string, 0, len(c.types))
	for name := range c.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Memories exports every character's memory, keyed by character ID.
func (c *Cast) Memories() map[string]Memory {
	out := make(map[string]Memory, len(c.agents))
	for id, agent := range c.agents {
		out[id] = agent.Memory()
	}
	return out
}

// RestoreMemories replaces character memories from an export. Characters must
// already exist in the cast; memories for unknown IDs are skipped with a
// warning.
func (c *Cast) RestoreMemories(memories map[string]Memory) {
	for id, m := range memories {
		agent, ok := c.agents[id]
		if !ok {
			c.logger.Warn("memory restore skipped",
				"character_id", id,
				"reason", "character not in cast",
			)
			continue
		}
		agent.RestoreMemory(m)
	}
}

// Len returns the number of characters in the cast.
func (c *Cast) Len() int {
	return len(c.agents)
}
