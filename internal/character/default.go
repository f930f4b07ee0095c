package character

import (
	"fmt"
	"strings"

	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

// defaultTraits lists the trait names in documentation order.
var defaultTraits = []Property{
	{Name: "assertiveness", Description: "How assertive and direct the character is (0=passive, 100=dominant)", Default: 50},
	{Name: "warmth", Description: "How warm and friendly the character is (0=cold, 100=very warm)", Default: 50},
	{Name: "formality", Description: "How formal the character's speech and manner are (0=casual, 100=very formal)", Default: 50},
	{Name: "verbosity", Description: "How talkative the character is (0=terse, 100=verbose)", Default: 50},
	{Name: "emotionality", Description: "How openly emotional the character is (0=stoic, 100=very expressive)", Default: 50},
}

var traitDescriptions = map[string]map[string]string{
	"assertiveness": {
		"very low":  "passive, deferential, avoids confrontation",
		"low":       "generally yielding, prefers others to lead",
		"moderate":  "balanced, assertive when needed but flexible",
		"high":      "confident, takes initiative, speaks their mind",
		"very high": "dominant, forceful, commands attention",
	},
	"warmth": {
		"very low":  "cold, distant, uncomfortable with emotional connection",
		"low":       "reserved, maintains professional distance",
		"moderate":  "friendly but measured, appropriate warmth",
		"high":      "warm, caring, easily connects with others",
		"very high": "extremely warm, nurturing, emotionally open",
	},
	"formality": {
		"very low":  "very casual, relaxed speech, ignores conventions",
		"low":       "informal, uses colloquialisms freely",
		"moderate":  "adapts formality to context",
		"high":      "formal, proper, respects conventions",
		"very high": "very formal, precise language, highly proper",
	},
	"verbosity": {
		"very low":  "terse, minimal words, gets straight to point",
		"low":       "concise, economical with words",
		"moderate":  "balanced, says what needs to be said",
		"high":      "talkative, elaborates on points",
		"very high": "verbose, detailed, extensive explanations",
	},
	"emotionality": {
		"very low":  "stoic, rarely shows emotion, controlled",
		"low":       "reserved emotionally, subtle expressions",
		"moderate":  "appropriate emotional expression",
		"high":      "emotionally expressive, feelings evident",
		"very high": "highly emotional, wears heart on sleeve",
	},
}

func traitLevel(value int) string {
	switch {
	case value <= 20:
		return "very low"
	case value <= 40:
		return "low"
	case value <= 60:
		return "moderate"
	case value <= 80:
		return "high"
	default:
		return "very high"
	}
}

func describeTrait(name string, value int) string {
	level := traitLevel(value)
	if desc, ok := traitDescriptions[name][level]; ok {
		return desc
	}
	return fmt.Sprintf("%s %s", level, name)
}

func traitPersonality(properties map[string]int) string {
	lines := []string{"This character's personality traits:"}
	for _, trait := range defaultTraits {
		value := propertyValue(properties, trait.Name, trait.Default)
		title := strings.ToUpper(trait.Name[:1]) + trait.Name[1:]
		lines = append(lines, fmt.Sprintf("- **%s** (%d/100): %s", title, value, describeTrait(trait.Name, value)))
	}
	return strings.Join(lines, "\n")
}

// DefaultType creates trait-based character agents: five 0-100 personality
// traits rendered into a persona description.
type DefaultType struct{}

func (DefaultType) Name() string {
	return "default"
}

func (DefaultType) Properties() []Property {
	return defaultTraits
}

func (DefaultType) New(id string, profile story.CharacterProfile, properties map[string]int, instructions string, ai core.Agent) Agent {
	return newPersona(id, profile, traitPersonality(properties), instructions, ai)
}
