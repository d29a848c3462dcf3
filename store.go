package stackmate

import (
	"context"
	"sync"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/google/uuid"
)

// LogStore persists the recent-transaction list across restarts. TxLog treats
// persistence as best-effort: a store failure never blocks or corrupts the
// in-memory list.
type LogStore interface {
	// Save replaces the persisted list with records, newest first.
	Save(ctx context.Context, records []TxRecord) error
	// Load returns the persisted list, newest first. An empty store returns
	// a nil slice and no error.
	Load(ctx context.Context) ([]TxRecord, error)
}

// MemoryLogStore is an in-process LogStore. It is the default when no
// durable store is configured and the workhorse for tests.
type MemoryLogStore struct {
	mu      sync.Mutex
	records []TxRecord
}

// NewMemoryLogStore creates an empty in-memory store.
func NewMemoryLogStore() *MemoryLogStore {
	return &MemoryLogStore{}
}

func (s *MemoryLogStore) Save(_ context.Context, records []TxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]TxRecord(nil), records...)
	return nil
}

func (s *MemoryLogStore) Load(_ context.Context) ([]TxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TxRecord(nil), s.records...), nil
}

var _ LogStore = (*MemoryLogStore)(nil)

// SubscribeFunc receives a snapshot of the full record list after every
// mutation, newest first.
type SubscribeFunc func(records []TxRecord)

// TxLog tracks the most recent transactions a user has initiated. It keeps at
// most MaxTrackedRecords entries, newest first, deduplicates by record ID or
// chain transaction ID, and mirrors every change to its LogStore without
// letting persistence failures surface to callers.
type TxLog struct {
	mu      sync.Mutex
	records []TxRecord
	store   LogStore
	subs    []SubscribeFunc
	limit   int
}

// NewTxLog creates a transaction log backed by store, preloading whatever the
// store already holds. A nil store falls back to an in-memory one. Load
// failures are logged and start the log empty rather than failing
// construction.
func NewTxLog(ctx context.Context, store LogStore, opts ...TxLogOption) *TxLog {
	if store == nil {
		store = NewMemoryLogStore()
	}
	l := &TxLog{
		store: store,
		limit: MaxTrackedRecords,
	}
	for _, opt := range opts {
		opt(l)
	}

	records, err := store.Load(ctx)
	if err != nil {
		logger.WithFields(logger.Fields{
			"error": err,
		}).Warn("Failed to load persisted transaction log, starting empty")
		return l
	}
	if len(records) > l.limit {
		records = records[:l.limit]
	}
	l.records = records
	return l
}

// Subscribe registers fn to be called with a full snapshot after every
// mutation. Callbacks run synchronously on the mutating goroutine and must
// not call back into the log.
func (l *TxLog) Subscribe(fn SubscribeFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

// Upsert inserts rec at the front of the list, or updates the existing entry
// sharing its record ID or chain transaction ID. A missing record ID is
// assigned. The stored copy is returned.
func (l *TxLog) Upsert(ctx context.Context, rec TxRecord) TxRecord {
	l.mu.Lock()

	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	// Dedup by either key: the matching record is absorbed and the result
	// moves to the front of the list.
	if i := l.indexOf(rec.ID, rec.TxID); i >= 0 {
		existing := l.records[i]
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		if rec.TxID == "" {
			rec.TxID = existing.TxID
		}
		l.records = append(l.records[:i], l.records[i+1:]...)
	}
	l.records = append([]TxRecord{rec}, l.records...)
	if len(l.records) > l.limit {
		l.records = l.records[:l.limit]
	}

	snapshot := l.snapshotLocked()
	subs := l.subs
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	notify(subs, snapshot)
	return rec
}

// Update applies mutate to the record matching key by record ID or chain
// transaction ID and refreshes its UpdatedAt. It reports whether a record
// matched.
func (l *TxLog) Update(ctx context.Context, key string, mutate func(*TxRecord)) bool {
	l.mu.Lock()
	i := l.indexOf(key, key)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	mutate(&l.records[i])
	l.records[i].UpdatedAt = time.Now()

	snapshot := l.snapshotLocked()
	subs := l.subs
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	notify(subs, snapshot)
	return true
}

// Remove deletes the record matching key by record ID or chain transaction
// ID. It reports whether a record matched.
func (l *TxLog) Remove(ctx context.Context, key string) bool {
	l.mu.Lock()
	i := l.indexOf(key, key)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.records = append(l.records[:i], l.records[i+1:]...)

	snapshot := l.snapshotLocked()
	subs := l.subs
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	notify(subs, snapshot)
	return true
}

// Reset clears the log and its persisted copy.
func (l *TxLog) Reset(ctx context.Context) {
	l.mu.Lock()
	l.records = nil
	snapshot := l.snapshotLocked()
	subs := l.subs
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	notify(subs, snapshot)
}

// Items returns a snapshot of all tracked records, newest first.
func (l *TxLog) Items() []TxRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Active returns the records still in flight, newest first.
func (l *TxLog) Active() []TxRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	var active []TxRecord
	for _, rec := range l.records {
		if !rec.Status.Terminal() {
			active = append(active, rec)
		}
	}
	return active
}

// indexOf finds the first record whose ID matches id or whose chain
// transaction ID matches txID. Empty keys never match.
func (l *TxLog) indexOf(id, txID string) int {
	for i, rec := range l.records {
		if id != "" && rec.ID == id {
			return i
		}
		if txID != "" && rec.TxID == txID {
			return i
		}
	}
	return -1
}

func (l *TxLog) snapshotLocked() []TxRecord {
	return append([]TxRecord(nil), l.records...)
}

// persist mirrors the snapshot to the store. Failures are logged and
// swallowed so a broken store degrades the log to memory-only.
func (l *TxLog) persist(ctx context.Context, snapshot []TxRecord) {
	if err := l.store.Save(ctx, snapshot); err != nil {
		logger.WithFields(logger.Fields{
			"error":   err,
			"records": len(snapshot),
		}).Warn("Failed to persist transaction log")
	}
}

func notify(subs []SubscribeFunc, snapshot []TxRecord) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
