package persona

import (
	"fmt"
	"strings"
	"time"

	"telegram-dwh/internal/models"
)

const systemPrompt = "You are a behavioral analyst. You study chat transcripts and " +
	"produce structured persona profiles. Base every observation strictly on the " +
	"transcript, quote example phrases verbatim, and respond with a single JSON " +
	"object matching the requested schema. Do not invent facts."

// outputSchema describes the required response shape to the model. Field
// names mirror the wire schema so the decoded object validates directly.
const outputSchema = `{
  "persona_mirror": "free-text psychological portrait of the target, 2-4 paragraphs",
  "core_interests_and_passions": [
    {"topic": "...", "engagement_hint": "...", "example_phrases": ["..."]}
  ],
  "communication_style_and_preferences": {
    "dominant_style": {
      "description": "...", "formality": "...", "verbosity": "...",
      "tone_preference_hint": "...", "example_phrases": ["..."]
    },
    "linguistic_markers": {
      "characteristic_vocabulary_or_jargon": ["..."],
      "frequent_personal_expressions": ["..."],
      "persona_changing_over_time": ["..."]
    }
  },
  "cognitive_approach_and_decision_making": {
    "information_processing_hint": {"style": "...", "example_phrases": ["..."]},
    "problem_solving_tendencies": {"approach": "...", "example_phrases": ["..."]},
    "expression_of_opinions": {"manner": "...", "example_phrases": ["..."]}
  },
  "learning_and_development_indicators": [
    {"learning_topic_or_skill": "...", "evidence_type": "...", "example_phrases": ["..."]}
  ],
  "values_and_motivators_hint": [
    {"inferred_value_or_motivator": "...", "example_phrases": ["..."]}
  ]
}`

// buildPrompt assembles the analysis request: a chronological transcript
// with the target's messages labeled, followed by the required output
// schema.
func buildPrompt(msgs []models.Message, isTarget func(*models.Message) bool, target string) string {
	var b strings.Builder

	label := target
	if target == TargetSelf {
		label = "the account owner"
	}
	fmt.Fprintf(&b, "Analyze the participant %q in the following conversation transcript.\n", label)
	b.WriteString("Messages from the analysis target are marked with (Target).\n\n")
	b.WriteString("Transcript:\n\n")
	b.WriteString(formatTranscript(msgs, isTarget))
	b.WriteString("\n\nRespond with one JSON object of exactly this shape:\n")
	b.WriteString(outputSchema)
	return b.String()
}

// formatTranscript renders messages oldest-first. Messages without text
// (bare media) are skipped; they carry no analyzable language.
func formatTranscript(msgs []models.Message, isTarget func(*models.Message) bool) string {
	var parts []string

	// History arrives newest-first; the transcript reads top-down.
	for i := len(msgs) - 1; i >= 0; i-- {
		m := &msgs[i]
		if strings.TrimSpace(m.Text) == "" {
			continue
		}

		name := m.Sender.Name
		if isTarget(m) {
			name = "(Target) " + name
		}
		ts := time.Unix(m.Date, 0).UTC().Format("2006-01-02 15:04")
		parts = append(parts, fmt.Sprintf("[%s] Name: %s\nMessage:\n%s", ts, name, m.Text))
	}

	return strings.Join(parts, "\n\n---\n\n")
}
