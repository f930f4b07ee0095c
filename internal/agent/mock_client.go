package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MockCall records one completion request made against the mock.
type MockCall struct {
	System string
	User   string
}

// MockClient provides deterministic fake completions for testing. It sniffs
// the system prompt to decide which phase is calling and answers with a
// response of the matching shape. The continuity-evaluation response echoes
// the evaluated narrative back unchanged with no conflicts, which is the
// contract the real capability is expected to honor when it finds nothing
// wrong.
type MockClient struct {
	mu       sync.Mutex
	calls    []MockCall
	failAt   int // 1-based call index to fail at; 0 disables
	failErr  error
	narrated int
}

// NewMockClient creates a mock completion client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// FailAt makes the nth call (1-based, counting every call) return err.
func (m *MockClient) FailAt(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt = n
	m.failErr = err
}

// Calls returns a copy of every recorded call.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete returns a deterministic response for the detected phase.
func (m *MockClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.calls = append(m.calls, MockCall{System: systemPrompt, User: userPrompt})
	if m.failAt > 0 && len(m.calls) == m.failAt {
		return "", m.failErr
	}

	switch {
	case strings.Contains(systemPrompt, "story architect"):
		return m.architectResponse(), nil
	case strings.Contains(systemPrompt, "continuity editor"):
		return m.evaluationResponse(userPrompt), nil
	case strings.Contains(systemPrompt, "storyteller"):
		m.narrated++
		return m.narrationResponse(), nil
	default:
		// Editor and anything else: echo the prompt body.
		return userPrompt, nil
	}
}

// CompleteJSON behaves like Complete; every canned response is already JSON
// where JSON is expected.
func (m *MockClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.Complete(ctx, systemPrompt, userPrompt)
}

func (m *MockClient) architectResponse() string {
	event := map[string]any{
		"title":   fmt.Sprintf("Mock Event %d", len(m.calls)),
		"summary": "A mock plot event.",
		"beats": []map[string]any{
			{
				"description":         "Something happens.",
				"beat_type":           "occurrence",
				"characters_involved": []string{},
			},
		},
	}
	out, _ := json.Marshal(event)
	return string(out)
}

func (m *MockClient) narrationResponse() string {
	narration := map[string]any{
		"narrative_text": fmt.Sprintf("Mock narration %d.", m.narrated),
		"beat_reference": "ignored by caller",
	}
	out, _ := json.Marshal(narration)
	return string(out)
}

// evaluationResponse extracts the narrative under evaluation from the user
// prompt and returns it byte-for-byte with an empty conflict list.
func (m *MockClient) evaluationResponse(userPrompt string) string {
	narrative := extractSection(userPrompt, "## Current Narrative to Evaluate", "## Story Beat Being Narrated")
	eval := map[string]any{
		"conflicts_found":   []string{},
		"revised_narrative": narrative,
	}
	out, _ := json.Marshal(eval)
	return string(out)
}

func extractSection(text, from, to string) string {
	start := strings.Index(text, from)
	if start == -1 {
		return text
	}
	start += len(from)
	rest := text[start:]
	if end := strings.Index(rest, to); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
