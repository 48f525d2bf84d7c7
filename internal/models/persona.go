package models

// PersonaInsight is the structured behavioral profile produced by the AI
// collaborator for one conversation participant. Field names follow the
// frontend contract and double as the output schema shown to the model.
type PersonaInsight struct {
	PersonaMirror string             `json:"persona_mirror"`
	CoreInterests []Interest         `json:"core_interests_and_passions"`
	Communication CommunicationStyle `json:"communication_style_and_preferences"`
	Cognitive     CognitiveApproach  `json:"cognitive_approach_and_decision_making"`
	Learning      []LearningSignal   `json:"learning_and_development_indicators"`
	Values        []ValueMotivator   `json:"values_and_motivators_hint"`
}

// Interest is one recurring topic the participant engages with
type Interest struct {
	Topic          string   `json:"topic"`
	EngagementHint string   `json:"engagement_hint,omitempty"`
	ExamplePhrases []string `json:"example_phrases,omitempty"`
}

// CommunicationStyle describes how the participant writes
type CommunicationStyle struct {
	DominantStyle     DominantStyle     `json:"dominant_style"`
	LinguisticMarkers LinguisticMarkers `json:"linguistic_markers"`
}

// DominantStyle is the participant's prevailing register
type DominantStyle struct {
	Description        string   `json:"description"`
	Formality          string   `json:"formality,omitempty"`
	Verbosity          string   `json:"verbosity,omitempty"`
	TonePreferenceHint string   `json:"tone_preference_hint,omitempty"`
	ExamplePhrases     []string `json:"example_phrases,omitempty"`
}

// LinguisticMarkers collects characteristic wording
type LinguisticMarkers struct {
	Vocabulary          []string `json:"characteristic_vocabulary_or_jargon,omitempty"`
	PersonalExpressions []string `json:"frequent_personal_expressions,omitempty"`
	ChangesOverTime     []string `json:"persona_changing_over_time,omitempty"`
}

// CognitiveApproach describes thinking and decision patterns
type CognitiveApproach struct {
	InformationProcessing EvidencedTrait `json:"information_processing_hint"`
	ProblemSolving        EvidencedTrait `json:"problem_solving_tendencies"`
	OpinionExpression     EvidencedTrait `json:"expression_of_opinions"`
}

// EvidencedTrait is a free-text observation backed by quoted phrases
type EvidencedTrait struct {
	Style          string   `json:"style,omitempty"`
	Approach       string   `json:"approach,omitempty"`
	Manner         string   `json:"manner,omitempty"`
	ExamplePhrases []string `json:"example_phrases,omitempty"`
}

// LearningSignal is evidence of a skill or topic being learned
type LearningSignal struct {
	TopicOrSkill   string   `json:"learning_topic_or_skill"`
	EvidenceType   string   `json:"evidence_type,omitempty"`
	ExamplePhrases []string `json:"example_phrases,omitempty"`
}

// ValueMotivator is an inferred value backed by quoted phrases
type ValueMotivator struct {
	Value          string   `json:"inferred_value_or_motivator"`
	ExamplePhrases []string `json:"example_phrases,omitempty"`
}
