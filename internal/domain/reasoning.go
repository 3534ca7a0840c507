package domain

import "time"

// ContextRecord is one stored past interaction, owned exclusively by the
// context memory. Immutable after creation; evicted only by capacity policy.
type ContextRecord struct {
	ID        int64          `json:"id"`
	Agent     string         `json:"agent"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ScoredContext pairs a record with its similarity to a query.
type ScoredContext struct {
	ContextRecord
	Similarity float64 `json:"similarity"`
}

// InteractionRecord is one entry in the conversation tracker's append-only
// log. Lifecycle is the session; the caller clears it, it never self-expires.
type InteractionRecord struct {
	ID        int64          `json:"id"`
	Agent     string         `json:"agent"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// FlowAnalysis summarizes the conversation so far.
type FlowAnalysis struct {
	AgentSequence        []string `json:"agent_sequence"`
	InteractionCount     int      `json:"interaction_count"`
	WorkflowCompleteness float64  `json:"workflow_completeness"` // 0..1
	Patterns             []string `json:"patterns,omitempty"`
}

// DimensionScore is one axis of a multi-dimensional evaluation.
type DimensionScore struct {
	Score     float64 `json:"score"` // 0..10
	Reasoning string  `json:"reasoning"`
}

// ConfidenceInterval bounds an overall score; Lower <= overall <= Upper.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MultiDimEvaluation scores an idea across the configured dimension set.
type MultiDimEvaluation struct {
	DimensionScores    map[string]DimensionScore `json:"dimension_scores"`
	OverallScore       float64                   `json:"overall_score"`
	ConfidenceInterval ConfidenceInterval        `json:"confidence_interval"`
}

// InferenceStep is a single rule application.
type InferenceStep struct {
	Premise     string  `json:"premise"`
	Conclusion  string  `json:"conclusion"`
	Confidence  float64 `json:"confidence"` // 0..1
	RuleApplied string  `json:"rule_applied"`
}

// InferenceChain is an ordered sequence of rule applications from premises
// to an overall conclusion.
type InferenceChain struct {
	Steps             []InferenceStep `json:"steps"`
	OverallConclusion string          `json:"overall_conclusion"`
	ConfidenceScore   float64         `json:"confidence_score"`
	ValidityScore     float64         `json:"validity_score"`
}

// ConsistencyReport flags contradictions within a premise set.
type ConsistencyReport struct {
	Contradictions   []string    `json:"contradictions,omitempty"`
	ProblematicPairs [][2]string `json:"problematic_pairs,omitempty"`
	ConsistencyScore float64     `json:"consistency_score"` // 0..1
}
