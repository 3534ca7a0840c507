package domain

// Idea is a generated candidate response to a topic/constraint pair.
// Immutable once produced by the generation stage.
type Idea struct {
	Text                  string  `json:"text"`
	GenerationTemperature float64 `json:"generation_temperature"`
}

// IdeaState tracks an idea's progress through the role pipeline.
type IdeaState string

const (
	StateGenerated   IdeaState = "generated"
	StateCritiqued   IdeaState = "critiqued"
	StateAdvocated   IdeaState = "advocated"
	StateSkepticized IdeaState = "skepticized"
	StateImproved    IdeaState = "improved"
	StateReEvaluated IdeaState = "reevaluated"
	StateDone        IdeaState = "done"
	StateRejected    IdeaState = "rejected"
)

// Rejection reasons recorded on WorkflowResult when an idea leaves the
// pipeline early.
const (
	RejectDuplicate     = "duplicate"
	RejectNearDuplicate = "near-duplicate"
	RejectStageFailed   = "stage-failed"
	RejectTimeout       = "timeout"
	RejectNotRanked     = "below-cutoff"
)

// Evaluation is one critique of one idea at one stage.
type Evaluation struct {
	Score      float64  `json:"score"` // 0..10
	Critique   string   `json:"critique"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

// AdvocacyResult is the advocate role's case for an idea.
type AdvocacyResult struct {
	Argument  string   `json:"argument"`
	KeyPoints []string `json:"key_points,omitempty"`
}

// SkepticismResult is the skeptic role's case against an idea.
type SkepticismResult struct {
	Concerns string   `json:"concerns"`
	Risks    []string `json:"risks,omitempty"`
}

// WorkflowResult is the per-idea output of a coordinator run. A rejected idea
// carries only the idea and the rejection reason so callers can render
// partial results.
type WorkflowResult struct {
	Idea               Idea               `json:"idea"`
	State              IdeaState          `json:"state"`
	RejectionReason    string             `json:"rejection_reason,omitempty"`
	InitialEvaluation  *Evaluation        `json:"initial_evaluation,omitempty"`
	Advocacy           *AdvocacyResult    `json:"advocacy,omitempty"`
	Skepticism         *SkepticismResult  `json:"skepticism,omitempty"`
	ImprovedIdea       string             `json:"improved_idea,omitempty"`
	ImprovedEvaluation *Evaluation        `json:"improved_evaluation,omitempty"`
	ScoreDelta         float64            `json:"score_delta"`
	MultiDim           *MultiDimEvaluation `json:"multi_dim_evaluation,omitempty"`
	Inference          *InferenceChain    `json:"logical_inference,omitempty"`
}
