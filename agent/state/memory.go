package state

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store is the session persistence contract used by the orchestrator.
// A record is created on first reference to a session id, mutated once per
// completed pipeline run, and evicted after the idle timeout.
type Store interface {
	GetOrCreate(ctx context.Context, sessionID, userID string) (*SessionRecord, error)
	Save(ctx context.Context, sessionID string, out RunOutcome) error
	Read(ctx context.Context, sessionID string) (*Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

// MemoryOption customizes MemoryStore.
type MemoryOption func(*MemoryStore)

func WithIdleTimeout(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemoryStore keeps session records in process memory. Access to a given
// session is serialized through a per-entry mutex shared by Save and the
// eviction sweep; distinct sessions do not block each other.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	idleTimeout   time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type sessionEntry struct {
	mu  sync.Mutex
	rec *SessionRecord
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]*sessionEntry),
		idleTimeout:   DefaultIdleTimeout,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start launches the background eviction sweep. Callers pair it with Close.
func (s *MemoryStore) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, sessionID, userID string) (*SessionRecord, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	entry := s.entryFor(sessionID, userID)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.rec.Touch(s.now())
	return entry.rec.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, out RunOutcome) error {
	if sessionID == "" {
		return ErrInvalidSession
	}

	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.rec.ApplyOutcome(out, s.now())
}

func (s *MemoryStore) Read(ctx context.Context, sessionID string) (*Snapshot, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.rec.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Sweep removes records idle beyond the timeout. It is run on the Start
// ticker and exported so tests can trigger it directly.
func (s *MemoryStore) Sweep() int {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range s.sessions {
		entry.mu.Lock()
		idle := entry.rec.LastAccessed.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Info().Int("evicted", evicted).Msg("session sweep complete")
	}
	return evicted
}

// Len reports the number of active sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) entryFor(sessionID, userID string) *sessionEntry {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[sessionID]; ok {
		return entry
	}
	entry = &sessionEntry{rec: NewSessionRecord(sessionID, userID, s.now())}
	s.sessions[sessionID] = entry
	log.Debug().Str("session_id", sessionID).Msg("created session")
	return entry
}
