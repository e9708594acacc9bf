package state

import "time"

// UserAnalytics aggregates a student's activity across all live sessions.
type UserAnalytics struct {
	UserID           string         `json:"user_id"`
	TotalSessions    int            `json:"total_sessions"`
	ToolUsage        map[string]int `json:"tools_usage"`
	TotalElapsedSecs float64        `json:"total_execution_time"`
	MostUsedTool     string         `json:"most_used_tool,omitempty"`
	LastSession      time.Time      `json:"last_session,omitzero"`
	Preferences      Preferences    `json:"student_preferences"`
}

// AnalyticsFor aggregates over the sessions owned by userID. A zero-value
// result with TotalSessions == 0 means the user has no live sessions.
func (s *MemoryStore) AnalyticsFor(userID string) UserAnalytics {
	out := UserAnalytics{
		UserID:    userID,
		ToolUsage: make(map[string]int, 4),
	}

	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	var latest *SessionRecord
	for _, entry := range entries {
		entry.mu.Lock()
		rec := entry.rec
		if rec.UserID != userID {
			entry.mu.Unlock()
			continue
		}
		out.TotalSessions++
		for _, res := range rec.State.LastResults {
			out.ToolUsage[res.Tool]++
			out.TotalElapsedSecs += res.ElapsedSeconds
		}
		if latest == nil || rec.LastAccessed.After(latest.LastAccessed) {
			latest = rec.Clone()
		}
		entry.mu.Unlock()
	}

	if latest != nil {
		out.LastSession = latest.LastAccessed
		out.Preferences = latest.Preferences
	}
	best := 0
	for tool, n := range out.ToolUsage {
		if n > best {
			best = n
			out.MostUsedTool = tool
		}
	}
	return out
}
