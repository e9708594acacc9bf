package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
	promptx "github.com/edumesh/tutor-orchestrator/agent/prompt"
)

// historyWindow bounds how much conversation history goes into the prompt.
const historyWindow = 5

type llmParams struct {
	ToolType         string  `json:"tool_type"`
	Topic            string  `json:"topic,omitempty"`
	Subject          string  `json:"subject,omitempty"`
	Difficulty       string  `json:"difficulty,omitempty"`
	Count            int     `json:"count,omitempty"`
	NoteTakingStyle  string  `json:"note_taking_style,omitempty"`
	DesiredDepth     string  `json:"desired_depth,omitempty"`
	ConceptToExplain string  `json:"concept_to_explain,omitempty"`
	IncludeExamples  *bool   `json:"include_examples,omitempty"`
	IncludeAnalogies bool    `json:"include_analogies,omitempty"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Reasoning        string  `json:"reasoning,omitempty"`
}

// ModelExtractor is the model-assisted extraction strategy. Falling back
// to the rule-based strategy on any invoke or parse failure is part of
// its contract, so Extract never fails and never surfaces model errors.
type ModelExtractor struct {
	runner   compose.Runnable[map[string]any, llmParams]
	fallback *RuleExtractor
}

func NewModelExtractor(ctx context.Context, chatModel einomodel.BaseChatModel, fallback *RuleExtractor) (*ModelExtractor, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if fallback == nil {
		fallback = NewRuleExtractor()
	}

	runner, err := compileExtractionGraph(ctx, chatModel, promptx.ExtractorPrompt())
	if err != nil {
		return nil, fmt.Errorf("%w: compile extraction graph: %v", contractx.ErrModelInvoke, err)
	}
	return &ModelExtractor{runner: runner, fallback: fallback}, nil
}

var _ contractx.Extractor = (*ModelExtractor)(nil)

func (e *ModelExtractor) Extract(ctx context.Context, cc contractx.ConversationContext) contractx.ExtractedParams {
	p, err := e.extract(ctx, cc)
	if err != nil {
		log.Warn().Err(err).Msg("model extraction failed, using rule-based fallback")
		return e.fallback.Extract(ctx, cc)
	}
	return p
}

func (e *ModelExtractor) extract(ctx context.Context, cc contractx.ConversationContext) (contractx.ExtractedParams, error) {
	payload := map[string]any{
		"student_name":    cc.Student.Name,
		"grade_level":     cc.Student.GradeLevel,
		"learning_style":  cc.Student.LearningStyleSummary,
		"emotional_state": cc.Student.EmotionalStateSummary,
		"mastery_level":   cc.Student.MasteryLevelSummary,
		"chat_history":    formatHistory(cc.ChatHistory),
		"student_message": cc.StudentMessage,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.ExtractedParams{}, fmt.Errorf("%w: marshal extraction payload: %v", contractx.ErrValidation, err)
	}

	out, err := e.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.ExtractedParams{}, fmt.Errorf("%w: extraction invoke: %v", contractx.ErrModelInvoke, err)
	}

	return e.convert(out, cc)
}

func (e *ModelExtractor) convert(out llmParams, cc contractx.ConversationContext) (contractx.ExtractedParams, error) {
	tool := contractx.ToolName(strings.TrimSpace(out.ToolType))
	if !contractx.KnownTool(tool) {
		return contractx.ExtractedParams{}, fmt.Errorf("%w: unsupported tool_type=%q", contractx.ErrSchemaViolation, out.ToolType)
	}

	p := contractx.ExtractedParams{
		Tool:             tool,
		Topic:            strings.TrimSpace(out.Topic),
		Subject:          strings.TrimSpace(out.Subject),
		Difficulty:       contractx.Difficulty(strings.TrimSpace(out.Difficulty)),
		NoteStyle:        contractx.NoteStyle(strings.TrimSpace(out.NoteTakingStyle)),
		Depth:            contractx.Depth(strings.TrimSpace(out.DesiredDepth)),
		Concept:          strings.TrimSpace(out.ConceptToExplain),
		IncludeExamples:  includeExamplesOrDefault(out.IncludeExamples, tool),
		IncludeAnalogies: out.IncludeAnalogies,
		Confidence:       out.ConfidenceScore,
		Method:           contractx.MethodLLMBased,
		Reasoning:        strings.TrimSpace(out.Reasoning),
	}
	if out.Count > 0 {
		p.Count = ClampCount(out.Count)
	}
	if p.Confidence < 0 {
		p.Confidence = 0
	}
	if p.Confidence > 1 {
		p.Confidence = 1
	}

	// Profile adaptation applies regardless of strategy.
	AdaptForProfile(&p, cc.Student)
	return p, nil
}

// includeExamplesOrDefault fills in a missing include_examples flag. The
// note maker and flashcard generator input contracts treat examples as
// opt-out, so absence means on; an explicit false from the model stands.
func includeExamplesOrDefault(v *bool, tool contractx.ToolName) bool {
	if v != nil {
		return *v
	}
	return tool == contractx.ToolNoteMaker || tool == contractx.ToolFlashcardGenerator
}

func formatHistory(history []contractx.ChatMessage) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n")
}
