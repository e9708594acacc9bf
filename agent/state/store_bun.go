package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type BunConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type sessionRow struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	SessionID    string    `bun:"session_id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	LastAccessed time.Time `bun:"last_accessed,notnull"`
	Payload      []byte    `bun:"payload,type:jsonb,notnull"`
}

// BunStore persists SessionRecord rows in Postgres. Idle eviction goes
// through EvictIdle, typically driven by the caller's scheduler.
type BunStore struct {
	db          *bun.DB
	idleTimeout time.Duration
	locks       keyedLocks
	now         func() time.Time
}

func NewBunStore(cfg BunConfig) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	return &BunStore{
		db:          bun.NewDB(sqldb, pgdialect.New()),
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}, nil
}

var _ Store = (*BunStore)(nil)

// Init creates the sessions table when absent.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*sessionRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) GetOrCreate(ctx context.Context, sessionID, userID string) (*SessionRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	rec, err := s.load(ctx, sessionID)
	if err == nil {
		rec.Touch(s.now())
		if err := s.persist(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	rec = NewSessionRecord(sessionID, userID, s.now())
	if err := s.persist(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *BunStore) Save(ctx context.Context, sessionID string, out RunOutcome) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := rec.ApplyOutcome(out, s.now()); err != nil {
		return err
	}
	return s.persist(ctx, rec)
}

func (s *BunStore) Read(ctx context.Context, sessionID string) (*Snapshot, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.load(ctx, sessionID)
}

func (s *BunStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.NewDelete().
		Model((*sessionRow)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	return err
}

// EvictIdle removes sessions untouched for longer than the idle timeout
// and reports how many rows were deleted.
func (s *BunStore) EvictIdle(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.idleTimeout)
	res, err := s.db.NewDelete().
		Model((*sessionRow)(nil)).
		Where("last_accessed < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("evict idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *BunStore) load(ctx context.Context, sessionID string) (*SessionRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	row := new(sessionRow)
	err := s.db.NewSelect().
		Model(row).
		Where("session_id = ?", sessionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec SessionRecord
	if err := json.Unmarshal(row.Payload, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session record: %w", err)
	}
	return &rec, nil
}

func (s *BunStore) persist(ctx context.Context, rec *SessionRecord) error {
	if rec == nil {
		return ErrNilRecord
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	row := &sessionRow{
		SessionID:    rec.SessionID,
		UserID:       rec.UserID,
		CreatedAt:    rec.CreatedAt,
		LastAccessed: rec.LastAccessed,
		Payload:      payload,
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (session_id) DO UPDATE").
		Set("last_accessed = EXCLUDED.last_accessed").
		Set("payload = EXCLUDED.payload").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
