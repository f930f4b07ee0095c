// Package registry maps agent names to their implementations. Variants are
// registered explicitly at startup; lookups fail loudly on unknown names.
// There is no ambient discovery.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vampirenirmal/storylord/internal/architect"
	"github.com/vampirenirmal/storylord/internal/character"
	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/editor"
	"github.com/vampirenirmal/storylord/internal/narrator"
	"github.com/vampirenirmal/storylord/internal/story"
)

// Architect generates a story architecture from run parameters.
type Architect interface {
	Name() string
	Generate(ctx context.Context, input architect.Input) (story.StoryArchitecture, error)
}

// Narrator generates the narration corpus from a story architecture.
type Narrator interface {
	Name() string
	Generate(ctx context.Context, input narrator.Input) (story.NarratedStory, error)
}

// Editor is re-exported for callers resolving editors through the registry.
type Editor = editor.Editor

// CharacterType is re-exported for callers resolving character agent types.
type CharacterType = character.Type

// Registry holds the registered agent variants for one process.
type Registry struct {
	architects     map[string]func(core.Agent) Architect
	narrators      map[string]func(core.Agent, ...narrator.Option) Narrator
	editors        map[string]func(core.Agent) Editor
	characterTypes map[string]CharacterType
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		architects:     make(map[string]func(core.Agent) Architect),
		narrators:      make(map[string]func(core.Agent, ...narrator.Option) Narrator),
		editors:        make(map[string]func(core.Agent) Editor),
		characterTypes: make(map[string]CharacterType),
	}
}

// NewWithBuiltins creates a registry pre-populated with the built-in
// variants.
func NewWithBuiltins() *Registry {
	r := New()
	r.RegisterArchitect("default", func(a core.Agent) Architect { return architect.New(a) })
	r.RegisterNarrator("default", func(a core.Agent, opts ...narrator.Option) Narrator { return narrator.New(a, opts...) })
	r.RegisterEditor("default", editor.NewDefault)
	r.RegisterEditor("simile-smasher", editor.NewSimileSmasher)
	r.RegisterCharacterType(character.DefaultType{})
	r.RegisterCharacterType(character.MBTIType{})
	return r
}

// RegisterArchitect registers an architect factory under a name. Later
// registrations with the same name replace earlier ones.
func (r *Registry) RegisterArchitect(name string, factory func(core.Agent) Architect) {
	r.architects[name] = factory
}

// RegisterNarrator registers a narrator factory under a name. The factory
// receives the options the caller resolves with, so collaborators like the
// commit observer reach every registered variant.
func (r *Registry) RegisterNarrator(name string, factory func(core.Agent, ...narrator.Option) Narrator) {
	r.narrators[name] = factory
}

// RegisterEditor registers an editor factory under a name.
func (r *Registry) RegisterEditor(name string, factory func(core.Agent) Editor) {
	r.editors[name] = factory
}

// RegisterCharacterType registers a character agent type under its own name.
func (r *Registry) RegisterCharacterType(t CharacterType) {
	r.characterTypes[t.Name()] = t
}

// Architect resolves an architect by name.
func (r *Registry) Architect(name string, agent core.Agent) (Architect, error) {
	factory, ok := r.architects[name]
	if !ok {
		return nil, unknownError("architect", name, keys(r.architects))
	}
	return factory(agent), nil
}

// Narrator resolves a narrator by name, passing the options through to the
// variant's factory.
func (r *Registry) Narrator(name string, agent core.Agent, opts ...narrator.Option) (Narrator, error) {
	factory, ok := r.narrators[name]
	if !ok {
		return nil, unknownError("narrator", name, keys(r.narrators))
	}
	return factory(agent, opts...), nil
}

// Editor resolves an editor by name.
func (r *Registry) Editor(name string, agent core.Agent) (Editor, error) {
	factory, ok := r.editors[name]
	if !ok {
		return nil, unknownError("editor", name, keys(r.editors))
	}
	return factory(agent), nil
}

// Architects lists registered architect names, sorted.
func (r *Registry) Architects() []string { return keys(r.architects) }

// Narrators lists registered narrator names, sorted.
func (r *Registry) Narrators() []string { return keys(r.narrators) }

// Editors lists registered editor names, sorted.
func (r *Registry) Editors() []string { return keys(r.editors) }

// CharacterType resolves a character agent type by name.
func (r *Registry) CharacterType(name string) (CharacterType, error) {
	t, ok := r.characterTypes[name]
	if !ok {
		return nil, unknownError("character agent type", name, keys(r.characterTypes))
	}
	return t, nil
}

// CharacterTypes lists registered character agent type names, sorted.
func (r *Registry) CharacterTypes() []string { return keys(r.characterTypes) }

// NewCast builds a character cast with every registered character agent type
// available.
func (r *Registry) NewCast() *character.Cast {
	types := make([]character.Type, 0, len(r.characterTypes))
	for _, t := range r.characterTypes {
		types = append(types, t)
	}
	return character.NewCast(types...)
}

func unknownError(kind, name string, available []string) error {
	avail := "(none)"
	if len(available) > 0 {
		avail = strings.Join(available, ", ")
	}
	return fmt.Errorf("unknown %s %q (available: %s)", kind, name, avail)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
