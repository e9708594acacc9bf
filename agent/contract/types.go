package contract

import (
	"time"

	statex "github.com/edumesh/tutor-orchestrator/agent/state"
)

type ToolName string

const (
	ToolNoteMaker          ToolName = "note_maker"
	ToolFlashcardGenerator ToolName = "flashcard_generator"
	ToolConceptExplainer   ToolName = "concept_explainer"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Depth string

const (
	DepthBasic         Depth = "basic"
	DepthIntermediate  Depth = "intermediate"
	DepthAdvanced      Depth = "advanced"
	DepthComprehensive Depth = "comprehensive"
)

type NoteStyle string

const (
	NoteStyleOutline      NoteStyle = "outline"
	NoteStyleBulletPoints NoteStyle = "bullet_points"
	NoteStyleNarrative    NoteStyle = "narrative"
	NoteStyleStructured   NoteStyle = "structured"
)

type ExtractionMethod string

const (
	MethodRuleBased ExtractionMethod = "rule_based"
	MethodLLMBased  ExtractionMethod = "llm_based"
)

// StudentProfile is immutable for the duration of one request.
type StudentProfile struct {
	UserID                string `json:"user_id"`
	Name                  string `json:"name"`
	GradeLevel            string `json:"grade_level"`
	LearningStyleSummary  string `json:"learning_style_summary"`
	EmotionalStateSummary string `json:"emotional_state_summary"`
	MasteryLevelSummary   string `json:"mastery_level_summary"`
}

type ChatMessage struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

type ConversationContext struct {
	StudentMessage    string         `json:"student_message"`
	ChatHistory       []ChatMessage  `json:"chat_history,omitempty"`
	Student           StudentProfile `json:"user_info"`
	InferredIntent    string         `json:"inferred_intent,omitempty"`
	ExtractedEntities map[string]any `json:"extracted_entities,omitempty"`
}

// ExtractedParams is the typed parameter set produced by an extraction
// strategy. Zero values mean "not extracted". Confidence is always in [0,1].
type ExtractedParams struct {
	Tool             ToolName         `json:"tool_type"`
	Topic            string           `json:"topic,omitempty"`
	Subject          string           `json:"subject,omitempty"`
	Difficulty       Difficulty       `json:"difficulty,omitempty"`
	Count            int              `json:"count,omitempty"`
	NoteStyle        NoteStyle        `json:"note_taking_style,omitempty"`
	Depth            Depth            `json:"desired_depth,omitempty"`
	Concept          string           `json:"concept_to_explain,omitempty"`
	IncludeExamples  bool             `json:"include_examples,omitempty"`
	IncludeAnalogies bool             `json:"include_analogies,omitempty"`
	Confidence       float64          `json:"confidence_score"`
	Method           ExtractionMethod `json:"extraction_method"`
	Reasoning        string           `json:"reasoning,omitempty"`
	ProfileAdapted   bool             `json:"profile_adapted,omitempty"`
}

// ToolResult reports a single tool invocation. Output is set iff Success,
// Error iff not. Elapsed is always >= 0.
type ToolResult struct {
	Tool    ToolName       `json:"tool_name"`
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error_message,omitempty"`
	Elapsed time.Duration  `json:"execution_time"`
}

type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeError          Outcome = "error"
)

// OrchestrationResult is produced once per pipeline run and owned by the
// caller thereafter. ToolResults follow tool-selection order.
type OrchestrationResult struct {
	SessionID    string           `json:"session_id"`
	Outcome      Outcome          `json:"outcome"`
	ToolResults  []ToolResult     `json:"executed_tools"`
	Params       ExtractedParams  `json:"extracted_parameters"`
	Reasoning    string           `json:"reasoning"`
	SessionState *statex.Snapshot `json:"conversation_state,omitempty"`
}

// KnownTool reports whether name is one of the registered tool identifiers.
func KnownTool(name ToolName) bool {
	switch name {
	case ToolNoteMaker, ToolFlashcardGenerator, ToolConceptExplainer:
		return true
	default:
		return false
	}
}
