package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"telegram-dwh/internal/logic"
	"telegram-dwh/internal/models"
	"telegram-dwh/internal/telegram"
)

// messageWindow bounds how much history feeds one analysis. The insight
// is a pure function of this window and the model output; nothing is
// cached between requests.
const messageWindow = 200

// TargetSelf selects the authenticated user as the analysis target
const TargetSelf = "self"

// InsufficientDataError reports that the message window contains nothing
// attributable to the requested participant.
type InsufficientDataError struct {
	ChatID int64
	Target string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no messages attributable to %q in chat %d", e.Target, e.ChatID)
}

// Generator is the AI collaborator contract: a JSON-mode completion
// whose output the analyzer validates against the insight schema.
type Generator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error)
}

// Analyzer produces persona insights from conversation windows
type Analyzer struct {
	svc *logic.Service
	gen Generator
}

// NewAnalyzer creates a persona analyzer
func NewAnalyzer(svc *logic.Service, gen Generator) *Analyzer {
	return &Analyzer{svc: svc, gen: gen}
}

// Analyze builds a persona insight for one participant of a chat.
// target is either TargetSelf or a sender display name (matched
// case-insensitively). The model response must decode into the insight
// schema with a non-empty persona_mirror; anything else surfaces as an
// upstream error rather than being silently coerced.
func (a *Analyzer) Analyze(ctx context.Context, chatID int64, target string) (*models.PersonaInsight, error) {
	msgs, err := a.svc.ChatMessages(ctx, chatID, messageWindow, 0)
	if err != nil {
		return nil, err
	}

	isTarget := targetMatcher(target)
	attributable := 0
	for i := range msgs {
		if isTarget(&msgs[i]) {
			attributable++
		}
	}
	if attributable == 0 {
		return nil, &InsufficientDataError{ChatID: chatID, Target: target}
	}
	log.Printf("[Persona] Analysis started chat_id=%d target=%q window=%d attributable=%d",
		chatID, target, len(msgs), attributable)

	prompt := buildPrompt(msgs, isTarget, target)
	raw, err := a.gen.GenerateJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, &telegram.UpstreamError{Op: "generate persona insight", Err: err}
	}

	insight, err := decodeInsight(raw)
	if err != nil {
		return nil, &telegram.UpstreamError{Op: "validate persona insight", Err: err}
	}

	log.Printf("[Persona] Analysis completed chat_id=%d target=%q", chatID, target)
	return insight, nil
}

// targetMatcher returns the attribution predicate for a target value
func targetMatcher(target string) func(*models.Message) bool {
	if target == TargetSelf {
		return func(m *models.Message) bool { return m.FromAuthor }
	}
	return func(m *models.Message) bool {
		return !m.FromAuthor && strings.EqualFold(m.Sender.Name, target)
	}
}

// decodeInsight validates the model output against the insight schema
func decodeInsight(raw json.RawMessage) (*models.PersonaInsight, error) {
	var insight models.PersonaInsight
	if err := json.Unmarshal(raw, &insight); err != nil {
		return nil, fmt.Errorf("model output is not valid insight JSON: %w", err)
	}
	if strings.TrimSpace(insight.PersonaMirror) == "" {
		return nil, fmt.Errorf("model output is missing persona_mirror")
	}
	return &insight, nil
}
