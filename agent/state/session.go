package state

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilRecord       = errors.New("session record is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

const (
	// MaxHistoryLen caps per-session conversation history; oldest entries
	// are dropped first.
	MaxHistoryLen = 20

	DefaultIdleTimeout   = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

type HistoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolRunSummary is the per-tool slice of a run the store persists; the
// full OrchestrationResult stays with the caller.
type ToolRunSummary struct {
	Tool           string  `json:"tool_name"`
	Success        bool    `json:"success"`
	ElapsedSeconds float64 `json:"execution_time"`
}

// RunState is the latest parameter/tool-selection snapshot for a session.
type RunState struct {
	LastTools   []string         `json:"last_tools_used,omitempty"`
	LastParams  map[string]any   `json:"last_parameters,omitempty"`
	LastResults []ToolRunSummary `json:"last_execution_results,omitempty"`
	ExecutedAt  time.Time        `json:"execution_timestamp,omitzero"`
}

// Preferences aggregates what the student keeps asking for.
type Preferences struct {
	ToolUsage             map[string]int `json:"tool_usage,omitempty"`
	PreferredDifficulty   string         `json:"preferred_difficulty,omitempty"`
	PreferredNoteStyle    string         `json:"preferred_note_style,omitempty"`
	PreferredDepth        string         `json:"preferred_explanation_depth,omitempty"`
	RecentSuccessfulTools []string       `json:"recent_successful_tools,omitempty"`
}

type SessionRecord struct {
	SessionID    string         `json:"session_id"`
	UserID       string         `json:"user_id"`
	CreatedAt    time.Time      `json:"created_at"`
	LastAccessed time.Time      `json:"last_accessed"`
	State        RunState       `json:"state"`
	History      []HistoryEntry `json:"conversation_history,omitempty"`
	Preferences  Preferences    `json:"student_preferences"`
}

// Snapshot is the read-only copy handed out by Store.Read; callers own it.
type Snapshot = SessionRecord

// RunOutcome carries the subset of a completed pipeline run the store
// persists. Preference fields are empty when the run did not infer them.
type RunOutcome struct {
	UserID        string
	Message       string
	SelectedTools []string
	Params        map[string]any
	Results       []ToolRunSummary
	Difficulty    string
	NoteStyle     string
	Depth         string
}

func NewSessionRecord(sessionID, userID string, now time.Time) *SessionRecord {
	return &SessionRecord{
		SessionID:    sessionID,
		UserID:       userID,
		CreatedAt:    now.UTC(),
		LastAccessed: now.UTC(),
		Preferences: Preferences{
			ToolUsage: make(map[string]int, 4),
		},
	}
}

func (r *SessionRecord) Touch(now time.Time) {
	r.LastAccessed = now.UTC()
}

// ApplyOutcome merges one completed run into the record: selection and
// parameter snapshot, result summaries, history append (capped), and
// preference aggregates.
func (r *SessionRecord) ApplyOutcome(out RunOutcome, now time.Time) error {
	if r == nil {
		return ErrNilRecord
	}

	r.State = RunState{
		LastTools:   append([]string(nil), out.SelectedTools...),
		LastParams:  out.Params,
		LastResults: append([]ToolRunSummary(nil), out.Results...),
		ExecutedAt:  now.UTC(),
	}

	r.History = append(r.History, HistoryEntry{
		Role:      "user",
		Content:   out.Message,
		Timestamp: now.UTC(),
	})
	if len(r.History) > MaxHistoryLen {
		r.History = append([]HistoryEntry(nil), r.History[len(r.History)-MaxHistoryLen:]...)
	}

	if r.Preferences.ToolUsage == nil {
		r.Preferences.ToolUsage = make(map[string]int, 4)
	}
	for _, tool := range out.SelectedTools {
		r.Preferences.ToolUsage[tool]++
	}
	if out.Difficulty != "" {
		r.Preferences.PreferredDifficulty = out.Difficulty
	}
	if out.NoteStyle != "" {
		r.Preferences.PreferredNoteStyle = out.NoteStyle
	}
	if out.Depth != "" {
		r.Preferences.PreferredDepth = out.Depth
	}

	var succeeded []string
	for _, res := range out.Results {
		if res.Success {
			succeeded = append(succeeded, res.Tool)
		}
	}
	if len(succeeded) > 0 {
		r.Preferences.RecentSuccessfulTools = succeeded
	}

	r.Touch(now)
	return nil
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (r *SessionRecord) Clone() *SessionRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.History = append([]HistoryEntry(nil), r.History...)
	cp.State.LastTools = append([]string(nil), r.State.LastTools...)
	cp.State.LastResults = append([]ToolRunSummary(nil), r.State.LastResults...)
	if r.State.LastParams != nil {
		cp.State.LastParams = make(map[string]any, len(r.State.LastParams))
		for k, v := range r.State.LastParams {
			cp.State.LastParams[k] = v
		}
	}
	if r.Preferences.ToolUsage != nil {
		cp.Preferences.ToolUsage = make(map[string]int, len(r.Preferences.ToolUsage))
		for k, v := range r.Preferences.ToolUsage {
			cp.Preferences.ToolUsage[k] = v
		}
	}
	cp.Preferences.RecentSuccessfulTools = append([]string(nil), r.Preferences.RecentSuccessfulTools...)
	return &cp
}
