package character

import (
	"fmt"
	"strings"

	"github.com/vampirenirmal/storylord/internal/core"
	"github.com/vampirenirmal/storylord/internal/story"
)

var mbtiDimensions = []Property{
	{Name: "extroversion", Description: "E/I dimension: 0=Introverted, 100=Extroverted", Default: 50},
	{Name: "intuition", Description: "N/S dimension: 0=Sensing, 100=Intuitive", Default: 50},
	{Name: "thinking", Description: "T/F dimension: 0=Feeling, 100=Thinking", Default: 50},
	{Name: "judging", Description: "J/P dimension: 0=Perceiving, 100=Judging", Default: 50},
}

// mbtiType derives the 4-letter type from dimension values, high side wins
// at 50.
func mbtiType(properties map[string]int) string {
	letter := func(name string, high, low byte) byte {
		if propertyValue(properties, name, 50) >= 50 {
			return high
		}
		return low
	}
	return string([]byte{
		letter("extroversion", 'E', 'I'),
		letter("intuition", 'N', 'S'),
		letter("thinking", 'T', 'F'),
		letter("judging", 'J', 'P'),
	})
}

func describeExtroversion(value int) string {
	switch {
	case value <= 25:
		return "Strongly introverted: deeply reflective, needs extensive alone time to recharge, prefers one-on-one interactions, thinks before speaking"
	case value <= 45:
		return "Introverted: prefers smaller groups, values depth over breadth in relationships, processes internally before expressing"
	case value <= 55:
		return "Balanced on the E/I spectrum: can adapt to both social and solitary situations, flexible in energy management"
	case value <= 75:
		return "Extroverted: energized by social interaction, thinks out loud, comfortable in groups, seeks external stimulation"
	default:
		return "Strongly extroverted: thrives in social settings, very outgoing, processes through conversation, may struggle with extended solitude"
	}
}

func describeIntuition(value int) string {
	switch {
	case value <= 25:
		return "Strongly sensing: focuses on concrete facts and present reality, trusts experience over theory, practical and detail-oriented"
	case value <= 45:
		return "Sensing preference: values tangible evidence, prefers proven methods, attentive to sensory details"
	case value <= 55:
		return "Balanced on the N/S spectrum: can appreciate both big picture and details, flexible in information gathering"
	case value <= 75:
		return "Intuitive: focuses on patterns and possibilities, interested in meaning and future potential, comfortable with abstract concepts"
	default:
		return "Strongly intuitive: sees connections others miss, drawn to theory and innovation, may overlook practical details"
	}
}

func describeThinking(value int) string {
	switch {
	case value <= 25:
		return "Strongly feeling: makes decisions based on values and impact on people, empathetic, seeks harmony, may prioritize relationships over logic"
	case value <= 45:
		return "Feeling preference: considers emotional impact, values-driven, diplomatic, strives for consensus"
	case value <= 55:
		return "Balanced on the T/F spectrum: can employ both logic and empathy, context-dependent decision making"
	case value <= 75:
		return "Thinking preference: logical decision-making, values fairness and consistency, comfortable with objective critique"
	default:
		return "Strongly thinking: highly analytical, prioritizes logic over emotions, may seem detached or blunt"
	}
}

func describeJudging(value int) string {
	switch {
	case value <= 25:
		return "Strongly perceiving: highly spontaneous and adaptable, dislikes rigid plans, keeps options open, may procrastinate on decisions"
	case value <= 45:
		return "Perceiving preference: flexible approach, comfortable with ambiguity, responsive to new information"
	case value <= 55:
		return "Balanced on the J/P spectrum: can be both structured and flexible depending on situation"
	case value <= 75:
		return "Judging preference: prefers structure and plans, decisive, goal-oriented, likes closure"
	default:
		return "Strongly judging: highly organized and methodical, uncomfortable with uncertainty, prefers clear schedules and decisions"
	}
}

func mbtiPersonality(properties map[string]int) string {
	lines := []string{
		fmt.Sprintf("This character has an **%s** personality type based on their MBTI dimensions:", mbtiType(properties)),
		"",
		fmt.Sprintf("**Extroversion/Introversion** (%d/100):", propertyValue(properties, "extroversion", 50)),
		describeExtroversion(propertyValue(properties, "extroversion", 50)),
		"",
		fmt.Sprintf("**Intuition/Sensing** (%d/100):", propertyValue(properties, "intuition", 50)),
		describeIntuition(propertyValue(properties, "intuition", 50)),
		"",
		fmt.Sprintf("**Thinking/Feeling** (%d/100):", propertyValue(properties, "thinking", 50)),
		describeThinking(propertyValue(properties, "thinking", 50)),
		"",
		fmt.Sprintf("**Judging/Perceiving** (%d/100):", propertyValue(properties, "judging", 50)),
		describeJudging(propertyValue(properties, "judging", 50)),
	}
	return strings.Join(lines, "\n")
}

// MBTIType creates character agents from four Myers-Briggs dimensions.
type MBTIType struct{}

func (MBTIType) Name() string {
	return "mbti"
}

func (MBTIType) Properties() []Property {
	return mbtiDimensions
}

func (MBTIType) New(id string, profile story.CharacterProfile, properties map[string]int, instructions string, ai core.Agent) Agent {
	return newPersona(id, profile, mbtiPersonality(properties), instructions, ai)
}
