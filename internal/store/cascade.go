package store

import (
	"context"
	"fmt"

	"github.com/yusapedia/jimpitan/internal/model"
)

// The remote store enforces referential integrity, so multi-collection
// deletions must remove dependent rows strictly before the rows they depend
// on. The graph below declares who depends on whom; deletion order is
// computed from it rather than hand-ordered at each call site.

// dependency names a child collection and the column referencing the parent
// row's id.
type dependency struct {
	collection model.Collection
	column     string
}

// dependents is the foreign-key graph between collections. The paired warga
// account is deliberately absent: that pairing is a key-derivation
// convention, not a constraint, and is handled as an explicit extra step.
var dependents = map[model.Collection][]dependency{
	model.CollectionCitizens: {
		{model.CollectionJimpitan, "citizen_id"},
		{model.CollectionAttendances, "citizen_id"},
	},
}

// deletion is one backend delete step.
type deletion struct {
	collection model.Collection
	column     string
	value      string
}

// deleteOrder returns the steps required to remove one row of c, dependents
// strictly before the row itself.
func deleteOrder(c model.Collection, id string) []deletion {
	steps := make([]deletion, 0, len(dependents[c])+1)
	for _, d := range dependents[c] {
		steps = append(steps, deletion{d.collection, d.column, id})
	}
	return append(steps, deletion{c, "id", id})
}

// resetOrder is the fixed collection order of a full reset: children before
// parents, accounts last.
var resetOrder = []model.Collection{
	model.CollectionJimpitan,
	model.CollectionAttendances,
	model.CollectionMeetings,
	model.CollectionCitizens,
}

// DeleteCitizen removes a citizen together with every contribution and
// attendance record referencing it and its paired warga account. Memory is
// updated first; the backend deletions then run child-first. A backend
// failure aborts the remainder and is returned to the caller — some child
// rows may already be gone, there is no partial-cleanup guarantee.
func (s *Store) DeleteCitizen(ctx context.Context, id string) error {
	pairedID := model.WargaAccountID(id)

	s.mu.Lock()
	found := false
	citizens := s.snap.Citizens[:0]
	for _, c := range s.snap.Citizens {
		if c.ID == id {
			found = true
			continue
		}
		citizens = append(citizens, c)
	}
	if !found {
		s.mu.Unlock()
		return ErrCitizenNotFound
	}
	s.snap.Citizens = citizens

	records := s.snap.Jimpitan[:0]
	for _, r := range s.snap.Jimpitan {
		if r.CitizenID != id {
			records = append(records, r)
		}
	}
	s.snap.Jimpitan = records

	attendances := s.snap.Attendances[:0]
	for _, a := range s.snap.Attendances {
		if a.CitizenID != id {
			attendances = append(attendances, a)
		}
	}
	s.snap.Attendances = attendances

	accounts := s.snap.Accounts[:0]
	for _, a := range s.snap.Accounts {
		if a.ID != pairedID {
			accounts = append(accounts, a)
		}
	}
	s.snap.Accounts = accounts
	mirrored := append([]model.Account(nil), s.snap.Accounts...)
	s.mu.Unlock()

	for _, step := range deleteOrder(model.CollectionCitizens, id) {
		if err := s.backend.DeleteWhere(ctx, step.collection, step.column, step.value); err != nil {
			s.raiseBanner("failed to delete citizen data")
			return fmt.Errorf("cascade delete citizen %s: %w", id, err)
		}
	}
	if err := s.backend.DeleteWhere(ctx, model.CollectionAccounts, "id", pairedID); err != nil {
		s.raiseBanner("failed to delete citizen account")
		return fmt.Errorf("cascade delete citizen %s: %w", id, err)
	}

	s.mirrorAccounts(mirrored)
	return nil
}

// DeleteRegu removes a collector-group account. Citizens pointing at it are
// kept and their group reference cleared — first on the remote rows, then the
// account row is deleted.
func (s *Store) DeleteRegu(ctx context.Context, accountID string) error {
	s.mu.Lock()
	found := false
	accounts := s.snap.Accounts[:0]
	for _, a := range s.snap.Accounts {
		if a.ID == accountID {
			if !a.IsRegu() {
				s.mu.Unlock()
				return ErrNotRegu
			}
			found = true
			continue
		}
		accounts = append(accounts, a)
	}
	if !found {
		s.mu.Unlock()
		return ErrAccountNotFound
	}
	s.snap.Accounts = accounts
	for i := range s.snap.Citizens {
		if s.snap.Citizens[i].ReguID == accountID {
			s.snap.Citizens[i].ReguID = ""
		}
	}
	mirrored := append([]model.Account(nil), s.snap.Accounts...)
	s.mu.Unlock()

	if err := s.backend.ClearReference(ctx, model.CollectionCitizens, "regu_id", accountID); err != nil {
		s.raiseBanner("failed to detach citizens from group")
		return fmt.Errorf("delete regu %s: %w", accountID, err)
	}
	if err := s.backend.DeleteWhere(ctx, model.CollectionAccounts, "id", accountID); err != nil {
		s.raiseBanner("failed to delete group account")
		return fmt.Errorf("delete regu %s: %w", accountID, err)
	}

	s.mirrorAccounts(mirrored)
	return nil
}

// FullReset wipes all collections except settings and admin accounts, in a
// fixed child-first order, then clears memory and fires the reset hook so the
// embedding application restarts its session.
func (s *Store) FullReset(ctx context.Context) error {
	for _, c := range resetOrder {
		if err := s.backend.DeleteAll(ctx, c); err != nil {
			s.raiseBanner("reset failed")
			return fmt.Errorf("full reset: %w", err)
		}
	}
	for _, role := range []model.Role{model.RoleRegu, model.RoleWarga} {
		if err := s.backend.DeleteWhere(ctx, model.CollectionAccounts, "role", string(role)); err != nil {
			s.raiseBanner("reset failed")
			return fmt.Errorf("full reset: %w", err)
		}
	}

	s.mu.Lock()
	s.snap.Citizens = nil
	s.snap.Jimpitan = nil
	s.snap.Meetings = nil
	s.snap.Attendances = nil
	admins := s.snap.Accounts[:0]
	for _, a := range s.snap.Accounts {
		if a.IsAdmin() {
			admins = append(admins, a)
		}
	}
	s.snap.Accounts = admins
	mirrored := append([]model.Account(nil), s.snap.Accounts...)
	s.mu.Unlock()

	s.mirrorAccounts(mirrored)
	if s.onReset != nil {
		s.onReset()
	}
	return nil
}
