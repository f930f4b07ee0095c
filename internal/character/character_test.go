package character

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

// scriptedAI returns a fixed reply and records the prompts it saw.
type scriptedAI struct {
	reply   string
	err     error
	systems []string
	users   []string
}

func (s *scriptedAI) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.CompleteJSON(ctx, systemPrompt, userPrompt)
}

func (s *scriptedAI) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.systems = append(s.systems, systemPrompt)
	s.users = append(s.users, userPrompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testProfile() story.CharacterProfile {
	return story.CharacterProfile{
		Name:        "Marisol",
		Description: "a retired cartographer",
		Role:        "protagonist",
		Motivations: "finding the island she once erased from a map",
	}
}

func TestTraitLevel(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "very low"},
		{20, "very low"},
		{21, "low"},
		{40, "low"},
		{41, "moderate"},
		{60, "moderate"},
		{61, "high"},
		{80, "high"},
		{81, "very high"},
		{100, "very high"},
	}
	for _, tt := range tests {
		if got := traitLevel(tt.value); got != tt.want {
			t.Errorf("traitLevel(%d) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTraitPersonality(t *testing.T) {
	got := traitPersonality(map[string]int{
		"assertiveness": 95,
		"warmth":        5,
		"verbosity":     -10,
		"formality":     250,
	})

	checks := []string{
		"This character's personality traits:",
		"- **Assertiveness** (95/100): dominant, forceful, commands attention",
		"- **Warmth** (5/100): cold, distant, uncomfortable with emotional connection",
		// out-of-range values clamp to the 0..100 scale
		"- **Verbosity** (0/100): terse, minimal words, gets straight to point",
		"- **Formality** (100/100): very formal, precise language, highly proper",
		// unspecified traits fall back to the default of 50
		"- **Emotionality** (50/100): appropriate emotional expression",
	}
	for _, want := range checks {
		if !strings.Contains(got, want) {
			t.Errorf("personality missing %q\ngot:\n%s", want, got)
		}
	}
}

func TestMBTIType(t *testing.T) {
	tests := []struct {
		name       string
		properties map[string]int
		want       string
	}{
		{"all high", map[string]int{"extroversion": 75, "intuition": 75, "thinking": 75, "judging": 75}, "ENTJ"},
		{"all low", map[string]int{"extroversion": 25, "intuition": 25, "thinking": 25, "judging": 25}, "ISFP"},
		{"boundary at 50 takes the high side", map[string]int{"extroversion": 50, "intuition": 49, "thinking": 50, "judging": 49}, "ESTP"},
		{"defaults", map[string]int{}, "ENTJ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mbtiType(tt.properties); got != tt.want {
				t.Errorf("mbtiType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMBTIPersonality(t *testing.T) {
	got := mbtiPersonality(map[string]int{
		"extroversion": 10,
		"intuition":    90,
		"thinking":     50,
		"judging":      70,
	})

	checks := []string{
		"This character has an **INTJ** personality type",
		"**Extroversion/Introversion** (10/100):",
		"Strongly introverted",
		"Strongly intuitive",
		"Balanced on the T/F spectrum",
		"Judging preference",
	}
	for _, want := range checks {
		if !strings.Contains(got, want) {
			t.Errorf("personality missing %q\ngot:\n%s", want, got)
		}
	}
}

func TestTypeProperties(t *testing.T) {
	if got := len(DefaultType{}.Properties()); got != 5 {
		t.Errorf("default type has %d properties, want 5", got)
	}
	if got := len(MBTIType{}.Properties()); got != 4 {
		t.Errorf("mbti type has %d properties, want 4", got)
	}
}

func TestPersonaSpeak(t *testing.T) {
	ai := &scriptedAI{reply: `{"content": "The tide tables never lie.", "emotional_state": "wistful", "internal_notes": "she recognized the handwriting"}`}
	agent := DefaultType{}.New("marisol", testProfile(), map[string]int{"warmth": 70}, "Never mention the shipwreck directly.", ai)

	resp, err := agent.Speak(context.Background(), SpeakInput{
		SceneContext:        "The harbor office, after closing.",
		ConversationHistory: []string{"Elijah: You kept the old charts?"},
		Prompt:              "Answer Elijah.",
	})
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if resp.Content != "The tide tables never lie." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.EmotionalState != "wistful" {
		t.Errorf("emotional state = %q", resp.EmotionalState)
	}

	system := ai.systems[0]
	for _, want := range []string{
		"You are roleplaying Marisol",
		"**Role:** protagonist",
		"warm, caring, easily connects with others",
		"Never mention the shipwreck directly.",
	} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	user := ai.users[0]
	for _, want := range []string{
		"The harbor office, after closing.",
		"Elijah: You kept the old charts?",
		"Answer Elijah.",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestPersonaMemoryAccumulates(t *testing.T) {
	ai := &scriptedAI{reply: `{"content": "I suppose I did.", "internal_notes": "do not let him see the torn page"}`}
	agent := DefaultType{}.New("marisol", testProfile(), nil, "", ai)

	if _, err := agent.Speak(context.Background(), SpeakInput{SceneContext: "harbor", Prompt: "reply"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if _, err := agent.Think(context.Background(), ThinkInput{SceneContext: "harbor", Situation: "he is still watching"}); err != nil {
		t.Fatalf("Think: %v", err)
	}

	mem := agent.Memory()
	if len(mem.Events) != 2 {
		t.Fatalf("memory has %d events, want 2", len(mem.Events))
	}
	// internal notes win over spoken content as the remembered event
	if want := "[speak] do not let him see the torn page"; mem.Events[0] != want {
		t.Errorf("event[0] = %q, want %q", mem.Events[0], want)
	}
	if !strings.HasPrefix(mem.Events[1], "[think] ") {
		t.Errorf("event[1] = %q", mem.Events[1])
	}

	// the next system prompt carries the remembered events
	if _, err := agent.Answer(context.Background(), AnswerInput{Question: "Why?", AskingAgent: "Elijah"}); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	last := ai.systems[len(ai.systems)-1]
	if !strings.Contains(last, "## What You Remember") {
		t.Error("system prompt missing memory section")
	}
	if !strings.Contains(last, "do not let him see the torn page") {
		t.Error("system prompt missing remembered event")
	}
}

func TestPersonaErrors(t *testing.T) {
	tests := []struct {
		name string
		ai   *scriptedAI
	}{
		{"transport failure", &scriptedAI{err: errors.New("boom")}},
		{"garbage response", &scriptedAI{reply: "not json at all"}},
		{"empty content", &scriptedAI{reply: `{"content": "", "emotional_state": "calm"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := MBTIType{}.New("marisol", testProfile(), nil, "", tt.ai)
			_, err := agent.Speak(context.Background(), SpeakInput{SceneContext: "x", Prompt: "y"})
			if err == nil {
				t.Fatal("expected error")
			}
			var genErr *core.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("error %T is not a GenerationError", err)
			}
			if genErr.Phase != "character" {
				t.Errorf("phase = %q", genErr.Phase)
			}
			if len(agent.Memory().Events) != 0 {
				t.Error("failed interaction should not be remembered")
			}
		})
	}
}

func TestCastCreateAndGet(t *testing.T) {
	cast := NewCast(DefaultType{}, MBTIType{})
	ai := &scriptedAI{reply: `{"content": "hm"}`}

	agent, err := cast.Create("marisol", "mbti", testProfile(), map[string]int{"thinking": 80}, "", ai)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if agent.ID() != "marisol" {
		t.Errorf("agent ID %q", agent.ID())
	}

	got, ok := cast.Get("marisol")
	if !ok || got.ID() != "marisol" {
		t.Errorf("Get returned %v, %v", got, ok)
	}
	if _, ok := cast.Get("elijah"); ok {
		t.Error("Get found a character that was never created")
	}
	if cast.Len() != 1 {
		t.Errorf("Len = %d", cast.Len())
	}
}

func TestCastUnknownType(t *testing.T) {
	cast := NewCast(DefaultType{}, MBTIType{})

	_, err := cast.Create("marisol", "astrology", testProfile(), nil, "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `unknown character agent type "astrology"`) {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "available: default, mbti") {
		t.Errorf("error does not list available types: %v", err)
	}

	empty := NewCast()
	_, err = empty.Create("marisol", "default", testProfile(), nil, "", nil)
	if err == nil || !strings.Contains(err.Error(), "(none)") {
		t.Errorf("empty cast error: %v", err)
	}
}

func TestCastMemoriesRoundTrip(t *testing.T) {
	ai := &scriptedAI{reply: `{"content": "noted"}`}
	cast := NewCast(DefaultType{})
	if _, err := cast.Create("marisol", "default", testProfile(), nil, "", ai); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := cast.Create("elijah", "default", story.CharacterProfile{Name: "Elijah", Description: "the keeper", Role: "foil", Motivations: "quiet"}, nil, "", ai); err != nil {
		t.Fatalf("Create: %v", err)
	}

	marisol, _ := cast.Get("marisol")
	if _, err := marisol.Speak(context.Background(), SpeakInput{SceneContext: "x", Prompt: "y"}); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	exported := cast.Memories()
	if len(exported) != 2 {
		t.Fatalf("exported %d memories, want 2", len(exported))
	}
	if len(exported["marisol"].Events) != 1 {
		t.Errorf("marisol has %d events, want 1", len(exported["marisol"].Events))
	}

	// restore into a fresh cast, with one memory for an unknown ID skipped
	fresh := NewCast(DefaultType{})
	if _, err := fresh.Create("marisol", "default", testProfile(), nil, "", ai); err != nil {
		t.Fatalf("Create: %v", err)
	}
	exported["ghost"] = Memory{Events: []string{"[speak] never instantiated"}}
	fresh.RestoreMemories(exported)

	restored, _ := fresh.Get("marisol")
	if got := restored.Memory().Events; len(got) != 1 || got[0] != exported["marisol"].Events[0] {
		t.Errorf("restored events = %v", got)
	}

	if got := cast.IDs(); len(got) != 2 || got[0] != "elijah" || got[1] != "marisol" {
		t.Errorf("IDs = %v", got)
	}
}
