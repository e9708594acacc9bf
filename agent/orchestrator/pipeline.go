package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
)

// pipelineStage enumerates the controller's states. A run always enters at
// stageExtract and leaves through stageRespond or stageFail into stageDone.
type pipelineStage int

const (
	stageExtract pipelineStage = iota
	stageSelect
	stagePrepare
	stageExecute
	stageRespond
	stageFail
	stageDone
)

func (s pipelineStage) String() string {
	switch s {
	case stageExtract:
		return "extract_parameters"
	case stageSelect:
		return "select_tools"
	case stagePrepare:
		return "prepare_tool_inputs"
	case stageExecute:
		return "execute_tools"
	case stageRespond:
		return "build_response"
	case stageFail:
		return "handle_error"
	case stageDone:
		return "done"
	default:
		return "unknown"
	}
}

// runState is the single mutable record a pipeline run threads through its
// stages. It never leaks past the run.
type runState struct {
	sessionID string
	cc        contractx.ConversationContext

	params   contractx.ExtractedParams
	selected []contractx.ToolName
	inputs   map[contractx.ToolName]map[string]any
	results  []contractx.ToolResult

	failure string
	result  *contractx.OrchestrationResult
}

// nextStage is the transition function. It depends only on the current
// stage and the run state, so transitions are testable in isolation.
func nextStage(cur pipelineStage, rs *runState) pipelineStage {
	if rs.failure != "" && cur != stageFail {
		return stageFail
	}
	switch cur {
	case stageExtract:
		return stageSelect
	case stageSelect:
		return stagePrepare
	case stagePrepare:
		return stageExecute
	case stageExecute:
		if classifyResults(rs.results) == contractx.OutcomeError {
			return stageFail
		}
		return stageRespond
	case stageRespond, stageFail:
		return stageDone
	default:
		return stageDone
	}
}

// classifyResults maps execution results onto the run outcome: all
// succeeded, some succeeded, or none (including an empty result set).
func classifyResults(results []contractx.ToolResult) contractx.Outcome {
	if len(results) == 0 {
		return contractx.OutcomeError
	}
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	switch {
	case succeeded == len(results):
		return contractx.OutcomeSuccess
	case succeeded > 0:
		return contractx.OutcomePartialSuccess
	default:
		return contractx.OutcomeError
	}
}

func (s *Service) run(ctx context.Context, rs *runState) {
	for st := stageExtract; st != stageDone; st = nextStage(st, rs) {
		log.Debug().Str("session_id", rs.sessionID).Stringer("stage", st).Msg("pipeline stage")
		switch st {
		case stageExtract:
			s.extractStage(ctx, rs)
		case stageSelect:
			s.selectStage(rs)
		case stagePrepare:
			s.prepareStage(rs)
		case stageExecute:
			s.executeStage(ctx, rs)
		case stageRespond:
			s.respondStage(rs)
		case stageFail:
			s.failStage(rs)
		}
	}
}

// extractStage runs the configured extraction strategy. Strategies promise
// not to fail, so a panic here is a programming error that must degrade
// the run instead of crashing the process.
func (s *Service) extractStage(ctx context.Context, rs *runState) {
	defer func() {
		if r := recover(); r != nil {
			rs.failure = fmt.Sprintf("parameter extraction failed: %v", r)
			log.Error().Str("session_id", rs.sessionID).Interface("panic", r).Msg("extraction strategy panicked")
		}
	}()
	rs.params = s.extractor.Extract(ctx, rs.cc)
	log.Info().
		Str("session_id", rs.sessionID).
		Str("tool", string(rs.params.Tool)).
		Str("method", string(rs.params.Method)).
		Float64("confidence", rs.params.Confidence).
		Msg("parameters extracted")
}

// selectStage picks the tools for this run. Extraction already chose one
// tool; the keyword fallback covers a strategy that returned no tool.
func (s *Service) selectStage(rs *runState) {
	if contractx.KnownTool(rs.params.Tool) {
		rs.selected = []contractx.ToolName{rs.params.Tool}
		return
	}

	msg := strings.ToLower(rs.cc.StudentMessage)
	switch {
	case containsAny(msg, "notes", "summary", "outline"):
		rs.selected = []contractx.ToolName{contractx.ToolNoteMaker}
	case containsAny(msg, "flashcard", "quiz", "practice"):
		rs.selected = []contractx.ToolName{contractx.ToolFlashcardGenerator}
	default:
		rs.selected = []contractx.ToolName{contractx.ToolConceptExplainer}
	}
	log.Info().Str("session_id", rs.sessionID).Interface("tools", rs.selected).Msg("fallback tool selection")
}

func (s *Service) prepareStage(rs *runState) {
	rs.inputs = make(map[contractx.ToolName]map[string]any, len(rs.selected))
	for _, tool := range rs.selected {
		rs.inputs[tool] = buildToolInput(tool, rs.params, rs.cc)
	}
}

// executeStage runs the selected tools sequentially, collecting one result
// per tool in selection order. Individual failures never abort the loop.
func (s *Service) executeStage(ctx context.Context, rs *runState) {
	rs.results = make([]contractx.ToolResult, 0, len(rs.selected))
	for _, tool := range rs.selected {
		rs.results = append(rs.results, s.tools.Execute(ctx, tool, rs.inputs[tool]))
	}
}

func (s *Service) respondStage(rs *runState) {
	rs.result = &contractx.OrchestrationResult{
		SessionID:   rs.sessionID,
		Outcome:     classifyResults(rs.results),
		ToolResults: rs.results,
		Params:      rs.params,
		Reasoning:   reasoningFor(rs),
	}
}

// failStage produces the degraded result: whatever was extracted plus an
// explanatory reasoning, with the error outcome and no tool results.
func (s *Service) failStage(rs *runState) {
	reason := rs.failure
	if reason == "" {
		reason = reasoningFor(rs)
	} else {
		reason = "Orchestration encountered an error: " + reason
	}
	rs.result = &contractx.OrchestrationResult{
		SessionID: rs.sessionID,
		Outcome:   contractx.OutcomeError,
		Params:    rs.params,
		Reasoning: reason,
	}
}

// reasoningFor concatenates the run's decision trail into one explanation.
func reasoningFor(rs *runState) string {
	var parts []string
	if rs.params.Reasoning != "" {
		parts = append(parts, "Parameter extraction: "+rs.params.Reasoning)
	}
	if len(rs.selected) > 0 {
		parts = append(parts, "Selected tools: "+joinTools(rs.selected))
	}

	var succeeded, failed []contractx.ToolName
	for _, r := range rs.results {
		if r.Success {
			succeeded = append(succeeded, r.Tool)
		} else {
			failed = append(failed, r.Tool)
		}
	}
	if len(succeeded) > 0 {
		parts = append(parts, "Successfully executed: "+joinTools(succeeded))
	}
	if len(failed) > 0 {
		parts = append(parts, "Failed to execute: "+joinTools(failed))
	}

	if len(parts) == 0 {
		return "Orchestration completed"
	}
	return strings.Join(parts, ". ")
}

func joinTools(tools []contractx.ToolName) string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func containsAny(msg string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
