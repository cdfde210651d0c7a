// Package storage holds the executive's audit sink: an append-only
// record of plan events for offline review. This is explicitly not
// plan state — a plan's node tree lives in memory only and is gone when
// the process exits; the executive never reads the audit store back to
// reconstruct anything.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/plexilrun/plexil/internal/infrastructure/monitoring"
)

// EventStore appends plan events for later retrieval; it never informs
// plan evaluation.
type EventStore interface {
	Append(ctx context.Context, runID uuid.UUID, e monitoring.PlanEvent) error
	ForRun(ctx context.Context, runID uuid.UUID) ([]monitoring.PlanEvent, error)
}

// MemoryEventStore is an in-process EventStore for tests and local runs
// without a database.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]monitoring.PlanEvent
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: make(map[uuid.UUID][]monitoring.PlanEvent)}
}

func (s *MemoryEventStore) Append(_ context.Context, runID uuid.UUID, e monitoring.PlanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[runID] = append(s.events[runID], e)
	return nil
}

func (s *MemoryEventStore) ForRun(_ context.Context, runID uuid.UUID) ([]monitoring.PlanEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]monitoring.PlanEvent, len(s.events[runID]))
	copy(out, s.events[runID])
	return out, nil
}

var _ EventStore = (*MemoryEventStore)(nil)

// EventRecord is the bun model backing BunEventStore's events table.
type EventRecord struct {
	bun.BaseModel `bun:"table:plan_events,alias:pe"`

	ID        int64          `bun:"id,pk,autoincrement"`
	RunID     uuid.UUID      `bun:"run_id,notnull"`
	Kind      string         `bun:"kind,notnull"`
	NodeID    string         `bun:"node_id"`
	Tick      int64          `bun:"tick,notnull"`
	Fields    map[string]any `bun:"fields,type:jsonb"`
	CreatedAt time.Time      `bun:"created_at,notnull,default:current_timestamp"`
}

// BunEventStore persists plan events to PostgreSQL through bun.
type BunEventStore struct {
	db *bun.DB
}

func NewBunEventStore(db *bun.DB) *BunEventStore {
	return &BunEventStore{db: db}
}

// InitSchema creates the plan_events table and its lookup index if they
// do not already exist. Call once at process startup.
func (s *BunEventStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*EventRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("creating plan_events table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS idx_plan_events_run_id ON plan_events(run_id)"); err != nil {
		return fmt.Errorf("creating plan_events index: %w", err)
	}
	return nil
}

func (s *BunEventStore) Append(ctx context.Context, runID uuid.UUID, e monitoring.PlanEvent) error {
	rec := &EventRecord{
		RunID:     runID,
		Kind:      string(e.Kind),
		NodeID:    e.NodeID,
		Tick:      e.Tick,
		Fields:    e.Fields,
		CreatedAt: e.At,
	}
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		return fmt.Errorf("appending plan event: %w", err)
	}
	return nil
}

func (s *BunEventStore) ForRun(ctx context.Context, runID uuid.UUID) ([]monitoring.PlanEvent, error) {
	var records []EventRecord
	err := s.db.NewSelect().Model(&records).Where("run_id = ?", runID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading plan events: %w", err)
	}
	out := make([]monitoring.PlanEvent, len(records))
	for i, r := range records {
		out[i] = monitoring.PlanEvent{
			Kind:   monitoring.EventKind(r.Kind),
			NodeID: r.NodeID,
			Tick:   r.Tick,
			At:     r.CreatedAt,
			Fields: r.Fields,
		}
	}
	return out, nil
}

var _ EventStore = (*BunEventStore)(nil)

// AuditObserver adapts an EventStore into a monitoring.PlanObserver,
// tagging every published event with a fixed run id and firing the
// append in its own goroutine so a slow database never stalls the
// executive's single-threaded step loop.
type AuditObserver struct {
	store EventStore
	runID uuid.UUID
}

func NewAuditObserver(store EventStore, runID uuid.UUID) *AuditObserver {
	return &AuditObserver{store: store, runID: runID}
}

func (a *AuditObserver) OnEvent(e monitoring.PlanEvent) {
	go func() {
		_ = a.store.Append(context.Background(), a.runID, e)
	}()
}

var _ monitoring.PlanObserver = (*AuditObserver)(nil)

// NewPostgresDB opens a bun.DB against dsn using pgdriver/pgdialect.
func NewPostgresDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}
