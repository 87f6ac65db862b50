// Package store holds the in-memory working copy of the six shared
// collections and keeps it synchronized with the configured backend.
//
// Writes are optimistic: every mutation entry point updates memory
// synchronously, then persists the complete affected collection
// asynchronously. A failed persist raises the error banner and is not
// retried; memory is never rolled back. The local view can therefore run
// ahead of the remote store until the next successful write or full reload —
// an accepted consistency gap, the system favors availability of the local
// view.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/yusapedia/jimpitan/internal/model"
)

// Backend persists the working copy. Exactly one implementation is chosen at
// session start — the remote adapter when the remote store is configured, the
// local cache otherwise — and never switches mid-session.
type Backend interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	SaveSettings(ctx context.Context, s model.Settings) error
	SaveCitizens(ctx context.Context, citizens []model.Citizen) error
	SaveAccounts(ctx context.Context, accounts []model.Account) error
	SaveJimpitan(ctx context.Context, records []model.JimpitanRecord) error
	SaveMeetings(ctx context.Context, meetings []model.Meeting) error
	SaveAttendances(ctx context.Context, attendances []model.Attendance) error
	DeleteAll(ctx context.Context, c model.Collection) error
	DeleteWhere(ctx context.Context, c model.Collection, column, value string) error
	ClearReference(ctx context.Context, c model.Collection, column, value string) error
}

// KV is the durable local key-value store used for session continuity. It is
// optional; without it sessions do not survive restarts.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is the single holder of the shared collections. All components
// reading or mutating them go through its entry points; nothing touches a
// collection directly.
type Store struct {
	backend Backend
	kv      KV
	onReset func()

	mu     sync.RWMutex
	snap   *model.Snapshot
	banner string

	wg sync.WaitGroup // in-flight persists
}

// Option configures a Store.
type Option func(*Store)

// WithSessionCache attaches the durable cache used for the session account
// and the local mirror of the accounts collection.
func WithSessionCache(kv KV) Option {
	return func(s *Store) { s.kv = kv }
}

// WithResetHook registers the callback fired after a completed full reset,
// so the embedding application can restart its session and drop any closures
// over deleted identifiers.
func WithResetHook(fn func()) Option {
	return func(s *Store) { s.onReset = fn }
}

// New creates an empty store over the given backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		snap:    &model.Snapshot{Settings: model.DefaultSettings()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload replaces the in-memory collections wholesale with the backend's
// current state.
func (s *Store) Reload(ctx context.Context) error {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		s.raiseBanner("failed to load data")
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

// Wait blocks until every in-flight persist has finished. Used on shutdown
// and by tests.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Banner returns the current dismissible error message, or "" when clear.
func (s *Store) Banner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banner
}

// DismissBanner clears the error banner.
func (s *Store) DismissBanner() {
	s.mu.Lock()
	s.banner = ""
	s.mu.Unlock()
}

func (s *Store) raiseBanner(msg string) {
	s.mu.Lock()
	s.banner = msg
	s.mu.Unlock()
}

// persist runs a backend save asynchronously. Failures raise the banner and
// leave memory untouched; the write is not retried.
func (s *Store) persist(c model.Collection, save func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := save(context.Background()); err != nil {
			slog.Warn("failed to persist collection",
				slog.String("collection", string(c)),
				slog.String("error", err.Error()),
			)
			s.raiseBanner("failed to save " + string(c))
		}
	}()
}

// Accessors return copies so callers never alias the shared slices.

// Settings returns the current environment configuration.
func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Settings
}

// Citizens returns the citizen collection.
func (s *Store) Citizens() []model.Citizen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Citizen(nil), s.snap.Citizens...)
}

// Accounts returns the account collection.
func (s *Store) Accounts() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Account(nil), s.snap.Accounts...)
}

// Jimpitan returns the contribution collection.
func (s *Store) Jimpitan() []model.JimpitanRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.JimpitanRecord(nil), s.snap.Jimpitan...)
}

// Meetings returns the meeting collection.
func (s *Store) Meetings() []model.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Meeting(nil), s.snap.Meetings...)
}

// Attendances returns the attendance collection.
func (s *Store) Attendances() []model.Attendance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Attendance(nil), s.snap.Attendances...)
}

// Snapshot returns a deep copy of the whole working set.
func (s *Store) Snapshot() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Mutation entry points. Each one applies the update to memory
// synchronously, then persists the complete affected collection
// asynchronously; concurrent in-flight mutations compose through the
// functional-update form instead of clobbering each other.

// SetSettings replaces the settings singleton.
func (s *Store) SetSettings(settings model.Settings) {
	s.mu.Lock()
	s.snap.Settings = settings
	s.mu.Unlock()
	s.persist(model.CollectionSettings, func(ctx context.Context) error {
		return s.backend.SaveSettings(ctx, settings)
	})
}

// UpdateCitizens applies fn to the citizen collection.
func (s *Store) UpdateCitizens(fn func(prev []model.Citizen) []model.Citizen) {
	s.mu.Lock()
	s.snap.Citizens = fn(s.snap.Citizens)
	citizens := append([]model.Citizen(nil), s.snap.Citizens...)
	s.mu.Unlock()
	s.persist(model.CollectionCitizens, func(ctx context.Context) error {
		return s.backend.SaveCitizens(ctx, citizens)
	})
}

// UpdateAccounts applies fn to the account collection. The result is also
// mirrored into the local cache for session continuity.
func (s *Store) UpdateAccounts(fn func(prev []model.Account) []model.Account) {
	s.mu.Lock()
	s.snap.Accounts = fn(s.snap.Accounts)
	accounts := append([]model.Account(nil), s.snap.Accounts...)
	s.mu.Unlock()
	s.persist(model.CollectionAccounts, func(ctx context.Context) error {
		return s.backend.SaveAccounts(ctx, accounts)
	})
	s.mirrorAccounts(accounts)
}

// UpdateJimpitan applies fn to the contribution collection.
func (s *Store) UpdateJimpitan(fn func(prev []model.JimpitanRecord) []model.JimpitanRecord) {
	s.mu.Lock()
	s.snap.Jimpitan = fn(s.snap.Jimpitan)
	records := append([]model.JimpitanRecord(nil), s.snap.Jimpitan...)
	s.mu.Unlock()
	s.persist(model.CollectionJimpitan, func(ctx context.Context) error {
		return s.backend.SaveJimpitan(ctx, records)
	})
}

// UpdateMeetings applies fn to the meeting collection.
func (s *Store) UpdateMeetings(fn func(prev []model.Meeting) []model.Meeting) {
	s.mu.Lock()
	s.snap.Meetings = fn(s.snap.Meetings)
	meetings := append([]model.Meeting(nil), s.snap.Meetings...)
	s.mu.Unlock()
	s.persist(model.CollectionMeetings, func(ctx context.Context) error {
		return s.backend.SaveMeetings(ctx, meetings)
	})
}

// UpdateAttendances applies fn to the attendance collection.
func (s *Store) UpdateAttendances(fn func(prev []model.Attendance) []model.Attendance) {
	s.mu.Lock()
	s.snap.Attendances = fn(s.snap.Attendances)
	attendances := append([]model.Attendance(nil), s.snap.Attendances...)
	s.mu.Unlock()
	s.persist(model.CollectionAttendances, func(ctx context.Context) error {
		return s.backend.SaveAttendances(ctx, attendances)
	})
}

// mirrorAccounts writes the account collection into the local cache so a
// session can resume offline. Best effort.
func (s *Store) mirrorAccounts(accounts []model.Account) {
	if s.kv == nil {
		return
	}
	blob, err := json.Marshal(accounts)
	if err != nil {
		return
	}
	if err := s.kv.Set(context.Background(), model.CacheKey(model.CollectionAccounts), blob); err != nil {
		slog.Warn("failed to mirror accounts to cache", slog.String("error", err.Error()))
	}
}
