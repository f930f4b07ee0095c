package registry

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/narrator"
	"github.com/vampirenirmal/storylord/internal/story"
)

func TestNewWithBuiltins(t *testing.T) {
	r := NewWithBuiltins()

	if got := r.Architects(); !reflect.DeepEqual(got, []string{"default"}) {
		t.Errorf("architects = %v", got)
	}
	if got := r.Narrators(); !reflect.DeepEqual(got, []string{"default"}) {
		t.Errorf("narrators = %v", got)
	}
	if got := r.Editors(); !reflect.DeepEqual(got, []string{"default", "simile-smasher"}) {
		t.Errorf("editors = %v", got)
	}
	if got := r.CharacterTypes(); !reflect.DeepEqual(got, []string{"default", "mbti"}) {
		t.Errorf("character types = %v", got)
	}
}

func TestResolveBuiltins(t *testing.T) {
	r := NewWithBuiltins()

	arch, err := r.Architect("default", nil)
	if err != nil {
		t.Fatalf("Architect: %v", err)
	}
	if arch.Name() != "default" {
		t.Errorf("architect name %q", arch.Name())
	}

	nar, err := r.Narrator("default", nil)
	if err != nil {
		t.Fatalf("Narrator: %v", err)
	}
	if nar.Name() != "default" {
		t.Errorf("narrator name %q", nar.Name())
	}

	ed, err := r.Editor("simile-smasher", nil)
	if err != nil {
		t.Fatalf("Editor: %v", err)
	}
	if ed.Name() != "simile-smasher" {
		t.Errorf("editor name %q", ed.Name())
	}

	ct, err := r.CharacterType("mbti")
	if err != nil {
		t.Fatalf("CharacterType: %v", err)
	}
	if ct.Name() != "mbti" {
		t.Errorf("character type name %q", ct.Name())
	}
}

func TestUnknownNameErrors(t *testing.T) {
	r := NewWithBuiltins()

	_, err := r.Editor("purple-prose", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `unknown editor "purple-prose"`) {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "available: default, simile-smasher") {
		t.Errorf("error does not list available editors: %v", err)
	}
}

func TestUnknownNameEmptyRegistry(t *testing.T) {
	r := New()

	_, err := r.Narrator("default", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "(none)") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUnknownCharacterType(t *testing.T) {
	r := NewWithBuiltins()

	_, err := r.CharacterType("astrology")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `unknown character agent type "astrology"`) {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "available: default, mbti") {
		t.Errorf("error does not list available types: %v", err)
	}
}

func TestNarratorFactoryReceivesOptions(t *testing.T) {
	r := NewWithBuiltins()

	got := 0
	r.RegisterNarrator("counting", func(a core.Agent, opts ...narrator.Option) Narrator {
		got = len(opts)
		return narrator.New(a, opts...)
	})

	observed := func(story.BeatNarration) {}
	if _, err := r.Narrator("counting", nil, narrator.WithCommitObserver(observed)); err != nil {
		t.Fatalf("Narrator: %v", err)
	}
	if got != 1 {
		t.Errorf("factory received %d options, want 1", got)
	}
}

type stubNarrator struct{}

func (stubNarrator) Name() string { return "stub" }

func (stubNarrator) Generate(ctx context.Context, input narrator.Input) (story.NarratedStory, error) {
	return story.NarratedStory{}, nil
}

func TestRegisterReplacesAndExtends(t *testing.T) {
	r := NewWithBuiltins()
	r.RegisterNarrator("stub", func(core.Agent, ...narrator.Option) Narrator { return stubNarrator{} })

	if got := r.Narrators(); !reflect.DeepEqual(got, []string{"default", "stub"}) {
		t.Errorf("narrators = %v", got)
	}

	nar, err := r.Narrator("stub", nil)
	if err != nil {
		t.Fatalf("Narrator: %v", err)
	}
	if nar.Name() != "stub" {
		t.Errorf("resolved narrator name %q", nar.Name())
	}
}
