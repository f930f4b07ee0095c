package narrator

import (
	"bytes"
	"fmt"
	"text/template"
)

const generationSystemPrompt = `You are a master storyteller and narrator. Your task is to transform story beats into vivid, engaging narrative prose.

When writing narrative:
- Match the specified tone throughout your prose
- Write dialogue that reflects each character's personality and motivations
- Show rather than tell - use sensory details and action
- Maintain consistent point of view
- Create smooth transitions that flow naturally from previous narrative
- Bring the story beat to life while staying true to its description

You must generate narrative text that fulfills the story beat's requirements while maintaining consistency with everything that has come before in the story.

Respond with a single JSON object with this shape:
{"narrative_text": "<the narrative prose>", "beat_reference": ""}`

const evaluationSystemPrompt = `You are a meticulous continuity editor. Your task is to evaluate narrative text against the full story corpus and identify any conflicts or inconsistencies.

Look for these types of conflicts:
- Timeline inconsistencies (events happening out of order, contradictory timing)
- Character behavior inconsistencies (acting against established personality or motivations)
- Factual inconsistencies (contradicting previously established facts)
- Dialogue inconsistencies (characters knowing things they shouldn't, forgetting things they should know)
- Setting inconsistencies (contradicting established locations or environments)
- Tone inconsistencies (jarring shifts that don't match the story's established feel)

After identifying conflicts, revise the narrative to resolve them while preserving the core content and advancing the story beat. If no conflicts are found, return the narrative unchanged.

Respond with a single JSON object with this shape:
{"conflicts_found": ["<conflict description>", ...], "revised_narrative": "<the full revised narrative>"}`

var generationUserTmpl = template.Must(template.New("generation").Parse(`## Current Plot Event

**Title:** {{.EventTitle}}
**Summary:** {{.EventSummary}}

## Story Beat to Develop

**Beat Type:** {{.BeatType}}
**Description:** {{.BeatDescription}}

## Characters in This Beat

{{.InvolvedCharacters}}

## Tone

{{.Tone}}

## Prior Story Context

{{.PriorContext}}

## Narrative Written So Far

{{.PriorNarration}}

---

Write the narrative prose for this story beat. The narrative should naturally continue from what has been written so far (or begin the story if this is the first beat). Include dialogue where appropriate for the characters involved.`))

var evaluationUserTmpl = template.Must(template.New("evaluation").Parse(`## Current Narrative to Evaluate

{{.CurrentNarrative}}

## Story Beat Being Narrated

**Beat Type:** {{.BeatType}}
**Description:** {{.BeatDescription}}

## Full Story Corpus (All Previous Narrative)

{{.FullCorpus}}

## Prior Plot Events and Beats

{{.PriorContext}}

---

Evaluate the current narrative against the full story corpus. Identify any conflicts or inconsistencies, then provide a revised version that resolves them. If no conflicts exist, return the narrative as-is.`))

// generationContext carries the rendered text blocks for one generation call.
type generationContext struct {
	EventTitle         string
	EventSummary       string
	BeatType           string
	BeatDescription    string
	InvolvedCharacters string
	Tone               string
	PriorContext       string
	PriorNarration     string
}

// evaluationContext carries the rendered text blocks for one evaluation call.
type evaluationContext struct {
	CurrentNarrative string
	BeatType         string
	BeatDescription  string
	FullCorpus       string
	PriorContext     string
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
