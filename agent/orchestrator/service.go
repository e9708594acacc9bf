package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/edumesh/tutor-orchestrator/agent/contract"
	statex "github.com/edumesh/tutor-orchestrator/agent/state"
)

// Service is the orchestration facade: one entrypoint per externally
// visible operation, with the pipeline, extraction strategy, tool
// executor, and session store wired in at construction.
type Service struct {
	store     statex.Store
	extractor contractx.Extractor
	tools     contractx.ToolExecutor
}

func New(store statex.Store, extractor contractx.Extractor, tools contractx.ToolExecutor) (*Service, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if extractor == nil {
		return nil, errors.New("extraction strategy is required")
	}
	if tools == nil {
		return nil, errors.New("tool executor is required")
	}
	return &Service{
		store:     store,
		extractor: extractor,
		tools:     tools,
	}, nil
}

// Submit runs one conversation turn through the pipeline. An empty
// sessionID starts a new session. The session is saved only after the
// pipeline has run to completion; a cancelled context aborts the turn
// without persisting anything.
func (s *Service) Submit(ctx context.Context, cc contractx.ConversationContext, sessionID string) (*contractx.OrchestrationResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if _, err := s.store.GetOrCreate(ctx, sessionID, cc.Student.UserID); err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	rs := &runState{sessionID: sessionID, cc: cc}
	s.run(ctx, rs)

	if err := ctx.Err(); err != nil {
		log.Warn().Str("session_id", sessionID).Err(err).Msg("turn aborted, session not saved")
		return nil, fmt.Errorf("orchestration aborted: %w", err)
	}

	if err := s.store.Save(ctx, sessionID, runOutcomeFrom(rs, cc)); err != nil {
		log.Error().Str("session_id", sessionID).Err(err).Msg("session save failed")
	} else if snap, err := s.store.Read(ctx, sessionID); err == nil {
		rs.result.SessionState = snap
	}

	log.Info().
		Str("session_id", sessionID).
		Str("outcome", string(rs.result.Outcome)).
		Int("tools", len(rs.result.ToolResults)).
		Msg("turn completed")
	return rs.result, nil
}

// ExtractOnly runs the extraction strategy without touching tools or the
// session store. Useful for previewing what a message would trigger.
func (s *Service) ExtractOnly(ctx context.Context, cc contractx.ConversationContext) contractx.ExtractedParams {
	return s.extractor.Extract(ctx, cc)
}

// ListTools returns the descriptors of every registered tool.
func (s *Service) ListTools() []contractx.ToolDescriptor {
	return s.tools.List()
}

// ValidateInput checks a tool input against its schema without executing.
func (s *Service) ValidateInput(tool contractx.ToolName, input map[string]any) (bool, []string) {
	return s.tools.Validate(tool, input)
}

// SessionState returns the stored snapshot for a session.
func (s *Service) SessionState(ctx context.Context, sessionID string) (*statex.Snapshot, error) {
	return s.store.Read(ctx, sessionID)
}

// EndSession removes a session from the store.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// runOutcomeFrom reduces a completed run to the slice the store persists.
func runOutcomeFrom(rs *runState, cc contractx.ConversationContext) statex.RunOutcome {
	out := statex.RunOutcome{
		UserID:     cc.Student.UserID,
		Message:    cc.StudentMessage,
		Params:     paramsDoc(rs.params),
		Difficulty: string(rs.params.Difficulty),
		NoteStyle:  string(rs.params.NoteStyle),
		Depth:      string(rs.params.Depth),
	}
	for _, tool := range rs.selected {
		out.SelectedTools = append(out.SelectedTools, string(tool))
	}
	for _, res := range rs.results {
		out.Results = append(out.Results, statex.ToolRunSummary{
			Tool:           string(res.Tool),
			Success:        res.Success,
			ElapsedSeconds: res.Elapsed.Seconds(),
		})
	}
	return out
}

func paramsDoc(p contractx.ExtractedParams) map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}
