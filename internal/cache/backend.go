package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yusapedia/jimpitan/internal/model"
	"github.com/yusapedia/jimpitan/internal/store"
)

// Ensure the cache satisfies the store's contracts
var (
	_ store.Backend = (*Backend)(nil)
	_ store.KV      = (*Store)(nil)
)

// Backend persists the six collections into the local cache as JSON blobs,
// one key per collection. It is used when no remote store is configured; the
// state store drives it through the same interface as the remote adapter, so
// mutation paths are identical in both modes.
type Backend struct {
	store *Store
}

// NewBackend wraps a cache store as an offline persistence backend.
func NewBackend(store *Store) *Backend {
	return &Backend{store: store}
}

// Load reads every collection from the cache. Absent keys yield empty
// collections, not errors: a fresh cache is an empty dataset.
func (b *Backend) Load(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{Settings: model.DefaultSettings()}

	if err := b.read(ctx, model.CollectionSettings, &snap.Settings); err != nil {
		return nil, err
	}
	if err := b.read(ctx, model.CollectionCitizens, &snap.Citizens); err != nil {
		return nil, err
	}
	if err := b.read(ctx, model.CollectionAccounts, &snap.Accounts); err != nil {
		return nil, err
	}
	if err := b.read(ctx, model.CollectionJimpitan, &snap.Jimpitan); err != nil {
		return nil, err
	}
	if err := b.read(ctx, model.CollectionMeetings, &snap.Meetings); err != nil {
		return nil, err
	}
	if err := b.read(ctx, model.CollectionAttendances, &snap.Attendances); err != nil {
		return nil, err
	}
	return snap, nil
}

func (b *Backend) read(ctx context.Context, c model.Collection, dest interface{}) error {
	blob, err := b.store.Get(ctx, model.CacheKey(c))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(blob, dest); err != nil {
		return fmt.Errorf("corrupt cache blob for %s: %w", c, err)
	}
	return nil
}

func (b *Backend) write(ctx context.Context, c model.Collection, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c, err)
	}
	return b.store.Set(ctx, model.CacheKey(c), blob)
}

// SaveSettings persists the settings singleton.
func (b *Backend) SaveSettings(ctx context.Context, s model.Settings) error {
	return b.write(ctx, model.CollectionSettings, s)
}

// SaveCitizens persists the full citizen collection.
func (b *Backend) SaveCitizens(ctx context.Context, citizens []model.Citizen) error {
	return b.write(ctx, model.CollectionCitizens, citizens)
}

// SaveAccounts persists the full account collection.
func (b *Backend) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	return b.write(ctx, model.CollectionAccounts, accounts)
}

// SaveJimpitan persists the full contribution collection.
func (b *Backend) SaveJimpitan(ctx context.Context, records []model.JimpitanRecord) error {
	return b.write(ctx, model.CollectionJimpitan, records)
}

// SaveMeetings persists the full meeting collection.
func (b *Backend) SaveMeetings(ctx context.Context, meetings []model.Meeting) error {
	return b.write(ctx, model.CollectionMeetings, meetings)
}

// SaveAttendances persists the full attendance collection.
func (b *Backend) SaveAttendances(ctx context.Context, attendances []model.Attendance) error {
	return b.write(ctx, model.CollectionAttendances, attendances)
}

// DeleteAll clears a collection.
func (b *Backend) DeleteAll(ctx context.Context, c model.Collection) error {
	return b.store.Delete(ctx, model.CacheKey(c))
}

// DeleteWhere removes rows whose column equals value, rewriting the stored
// blob. Only the columns named in the cascade graph are supported.
func (b *Backend) DeleteWhere(ctx context.Context, c model.Collection, column, value string) error {
	switch c {
	case model.CollectionJimpitan:
		var records []model.JimpitanRecord
		if err := b.read(ctx, c, &records); err != nil {
			return err
		}
		kept := records[:0]
		for _, r := range records {
			if !matchJimpitan(r, column, value) {
				kept = append(kept, r)
			}
		}
		return b.write(ctx, c, kept)
	case model.CollectionAttendances:
		var attendances []model.Attendance
		if err := b.read(ctx, c, &attendances); err != nil {
			return err
		}
		kept := attendances[:0]
		for _, a := range attendances {
			if !matchAttendance(a, column, value) {
				kept = append(kept, a)
			}
		}
		return b.write(ctx, c, kept)
	case model.CollectionCitizens:
		var citizens []model.Citizen
		if err := b.read(ctx, c, &citizens); err != nil {
			return err
		}
		kept := citizens[:0]
		for _, cz := range citizens {
			if !matchCitizen(cz, column, value) {
				kept = append(kept, cz)
			}
		}
		return b.write(ctx, c, kept)
	case model.CollectionAccounts:
		var accounts []model.Account
		if err := b.read(ctx, c, &accounts); err != nil {
			return err
		}
		kept := accounts[:0]
		for _, a := range accounts {
			if !matchAccount(a, column, value) {
				kept = append(kept, a)
			}
		}
		return b.write(ctx, c, kept)
	case model.CollectionMeetings:
		var meetings []model.Meeting
		if err := b.read(ctx, c, &meetings); err != nil {
			return err
		}
		kept := meetings[:0]
		for _, m := range meetings {
			if !(column == "id" && m.ID == value) {
				kept = append(kept, m)
			}
		}
		return b.write(ctx, c, kept)
	}
	return fmt.Errorf("unsupported delete filter: %s.%s", c, column)
}

// ClearReference nulls the column on rows referencing value. Only the
// citizen regu reference uses this.
func (b *Backend) ClearReference(ctx context.Context, c model.Collection, column, value string) error {
	if c != model.CollectionCitizens || column != "regu_id" {
		return fmt.Errorf("unsupported reference clear: %s.%s", c, column)
	}
	var citizens []model.Citizen
	if err := b.read(ctx, c, &citizens); err != nil {
		return err
	}
	for i := range citizens {
		if citizens[i].ReguID == value {
			citizens[i].ReguID = ""
		}
	}
	return b.write(ctx, c, citizens)
}

func matchJimpitan(r model.JimpitanRecord, column, value string) bool {
	switch column {
	case "id":
		return r.ID == value
	case "citizen_id":
		return r.CitizenID == value
	}
	return false
}

func matchAttendance(a model.Attendance, column, value string) bool {
	switch column {
	case "id":
		return a.ID == value
	case "citizen_id":
		return a.CitizenID == value
	}
	return false
}

func matchCitizen(c model.Citizen, column, value string) bool {
	switch column {
	case "id":
		return c.ID == value
	case "regu_id":
		return c.ReguID == value
	}
	return false
}

func matchAccount(a model.Account, column, value string) bool {
	switch column {
	case "id":
		return a.ID == value
	case "role":
		return string(a.Role) == value
	}
	return false
}
