package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yusapedia/jimpitan/internal/auth"
	"github.com/yusapedia/jimpitan/internal/calculator"
	"github.com/yusapedia/jimpitan/internal/model"
)

// Role-specific operations layered over the mutation entry points. Roles are
// advisory: nothing here checks who the caller is.

// SubmitJimpitan authors one contribution record for a citizen. The derived
// id makes a repeated submission for the same (date, citizen) overwrite the
// earlier record instead of duplicating it. The portions are derived from the
// nominal configured at this moment and never recomputed.
func (s *Store) SubmitJimpitan(citizenID string, amount int, date, reguName string) (model.JimpitanRecord, error) {
	s.mu.RLock()
	nominal := s.snap.Settings.JimpitanNominal
	var citizen *model.Citizen
	for i := range s.snap.Citizens {
		if s.snap.Citizens[i].ID == citizenID {
			citizen = &s.snap.Citizens[i]
			break
		}
	}
	if citizen == nil {
		s.mu.RUnlock()
		return model.JimpitanRecord{}, ErrCitizenNotFound
	}
	citizenName := citizen.Name
	s.mu.RUnlock()

	fund, savings := calculator.Split(amount, nominal)
	record := model.JimpitanRecord{
		ID:              model.JimpitanRecordID(date, citizenID),
		CitizenID:       citizenID,
		CitizenName:     citizenName,
		Amount:          amount,
		JimpitanPortion: fund,
		SavingsPortion:  savings,
		Date:            date,
		ReguName:        reguName,
		IsSent:          false,
		IsSaved:         true,
	}

	s.UpdateJimpitan(func(prev []model.JimpitanRecord) []model.JimpitanRecord {
		out := make([]model.JimpitanRecord, 0, len(prev)+1)
		for _, r := range prev {
			if r.ID != record.ID {
				out = append(out, r)
			}
		}
		return append(out, record)
	})
	return record, nil
}

// MarkJimpitanSent flags a group's saved records for one day as handed over
// to the administrator.
func (s *Store) MarkJimpitanSent(reguName, date string) {
	s.UpdateJimpitan(func(prev []model.JimpitanRecord) []model.JimpitanRecord {
		out := append([]model.JimpitanRecord(nil), prev...)
		for i := range out {
			if out[i].ReguName == reguName && out[i].Date == date {
				out[i].IsSent = true
			}
		}
		return out
	})
}

// RecordAttendance stores one citizen's attendance for a day. The derived id
// makes a repeated submission for the same (date, citizen) overwrite the
// earlier record instead of duplicating it.
func (s *Store) RecordAttendance(citizenID, date string, status model.AttendanceStatus, reason, meetingID, reguID string) (model.Attendance, error) {
	s.mu.RLock()
	known := false
	for i := range s.snap.Citizens {
		if s.snap.Citizens[i].ID == citizenID {
			known = true
			break
		}
	}
	s.mu.RUnlock()
	if !known {
		return model.Attendance{}, ErrCitizenNotFound
	}

	if meetingID == "" {
		meetingID = model.DefaultMeetingID
	}
	attendance := model.Attendance{
		ID:        model.AttendanceID(date, citizenID),
		MeetingID: meetingID,
		CitizenID: citizenID,
		Status:    status,
		Reason:    reason,
		Date:      date,
		ReguID:    reguID,
	}

	s.UpdateAttendances(func(prev []model.Attendance) []model.Attendance {
		out := make([]model.Attendance, 0, len(prev)+1)
		for _, a := range prev {
			if a.ID != attendance.ID {
				out = append(out, a)
			}
		}
		return append(out, attendance)
	})
	return attendance, nil
}

// AddCitizen registers a new citizen at the end of the display order,
// together with the paired warga account. The account starts with the
// citizen's name as username and the default password.
func (s *Store) AddCitizen(name, reguID string) (model.Citizen, error) {
	hash, err := auth.HashPassword(model.DefaultWargaPassword)
	if err != nil {
		return model.Citizen{}, err
	}

	citizen := model.Citizen{
		ID:     uuid.NewString(),
		Name:   name,
		ReguID: reguID,
	}
	s.UpdateCitizens(func(prev []model.Citizen) []model.Citizen {
		citizen.DisplayOrder = len(prev) + 1
		return append(prev, citizen)
	})

	account := model.Account{
		ID:       model.WargaAccountID(citizen.ID),
		Username: name,
		Password: hash,
		Role:     model.RoleWarga,
	}
	s.UpdateAccounts(func(prev []model.Account) []model.Account {
		return append(prev, account)
	})
	return citizen, nil
}

// EditCitizen rewrites a citizen's fields. The paired warga account follows
// the rename so its username stays the citizen's name.
func (s *Store) EditCitizen(id, name, reguID string, displayOrder int) error {
	found := false
	s.UpdateCitizens(func(prev []model.Citizen) []model.Citizen {
		out := append([]model.Citizen(nil), prev...)
		for i := range out {
			if out[i].ID == id {
				out[i].Name = name
				out[i].ReguID = reguID
				out[i].DisplayOrder = displayOrder
				found = true
			}
		}
		return out
	})
	if !found {
		return ErrCitizenNotFound
	}

	pairedID := model.WargaAccountID(id)
	s.UpdateAccounts(func(prev []model.Account) []model.Account {
		out := append([]model.Account(nil), prev...)
		for i := range out {
			if out[i].ID == pairedID {
				out[i].Username = name
			}
		}
		return out
	})
	return nil
}

// ChangePassword replaces an account's credential with the bcrypt hash of the
// new password.
func (s *Store) ChangePassword(accountID, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	found := false
	s.UpdateAccounts(func(prev []model.Account) []model.Account {
		out := append([]model.Account(nil), prev...)
		for i := range out {
			if out[i].ID == accountID {
				out[i].Password = hash
				found = true
			}
		}
		return out
	})
	if !found {
		return ErrAccountNotFound
	}
	return nil
}

// AddMeeting records a meeting with a generated minutes reference.
func (s *Store) AddMeeting(agenda, date, notes string) model.Meeting {
	meeting := model.Meeting{
		ID:            uuid.NewString(),
		Agenda:        agenda,
		Date:          date,
		MinutesNumber: fmt.Sprintf("MTG-%d", time.Now().UnixMilli()),
		Notes:         notes,
	}
	s.UpdateMeetings(func(prev []model.Meeting) []model.Meeting {
		return append(prev, meeting)
	})
	return meeting
}

// AddReguAccount creates a collector-group account.
func (s *Store) AddReguAccount(username, password, reguName string) (model.Account, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.Account{}, err
	}
	account := model.Account{
		ID:       uuid.NewString(),
		Username: username,
		Password: hash,
		Role:     model.RoleRegu,
		ReguName: reguName,
	}
	return s.addAccount(account)
}

// PairWargaAccount rewrites the warga account paired with a citizen, keyed by
// the derived id so the cascade can find it later. An account auto-created by
// AddCitizen is replaced, keeping the derived key stable.
func (s *Store) PairWargaAccount(citizenID, username, password string) (model.Account, error) {
	s.mu.RLock()
	known := false
	for i := range s.snap.Citizens {
		if s.snap.Citizens[i].ID == citizenID {
			known = true
			break
		}
	}
	s.mu.RUnlock()
	if !known {
		return model.Account{}, ErrCitizenNotFound
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.Account{}, err
	}
	account := model.Account{
		ID:       model.WargaAccountID(citizenID),
		Username: username,
		Password: hash,
		Role:     model.RoleWarga,
	}

	s.mu.RLock()
	for _, a := range s.snap.Accounts {
		if a.Username == account.Username && a.ID != account.ID {
			s.mu.RUnlock()
			return model.Account{}, ErrUsernameTaken
		}
	}
	s.mu.RUnlock()

	s.UpdateAccounts(func(prev []model.Account) []model.Account {
		out := make([]model.Account, 0, len(prev)+1)
		for _, a := range prev {
			if a.ID != account.ID {
				out = append(out, a)
			}
		}
		return append(out, account)
	})
	return account, nil
}

func (s *Store) addAccount(account model.Account) (model.Account, error) {
	s.mu.RLock()
	for _, a := range s.snap.Accounts {
		if a.Username == account.Username {
			s.mu.RUnlock()
			return model.Account{}, ErrUsernameTaken
		}
	}
	s.mu.RUnlock()

	s.UpdateAccounts(func(prev []model.Account) []model.Account {
		return append(prev, account)
	})
	return account, nil
}

// Authenticate verifies a username/password pair against the account
// collection and caches the session for continuity across restarts.
func (s *Store) Authenticate(ctx context.Context, username, password string) (model.Account, error) {
	s.mu.RLock()
	var match *model.Account
	for i := range s.snap.Accounts {
		if s.snap.Accounts[i].Username == username {
			match = &s.snap.Accounts[i]
			break
		}
	}
	if match == nil {
		s.mu.RUnlock()
		return model.Account{}, ErrInvalidCredentials
	}
	account := *match
	s.mu.RUnlock()

	if !auth.CheckPassword(account.Password, password) {
		return model.Account{}, ErrInvalidCredentials
	}

	if s.kv != nil {
		if blob, err := json.Marshal(account); err == nil {
			if err := s.kv.Set(ctx, model.SessionCacheKey, blob); err != nil {
				return account, fmt.Errorf("session not cached: %w", err)
			}
		}
	}
	return account, nil
}

// Session returns the cached session account, if any.
func (s *Store) Session(ctx context.Context) (model.Account, error) {
	if s.kv == nil {
		return model.Account{}, ErrNoSession
	}
	blob, err := s.kv.Get(ctx, model.SessionCacheKey)
	if err != nil {
		return model.Account{}, ErrNoSession
	}
	var account model.Account
	if err := json.Unmarshal(blob, &account); err != nil {
		return model.Account{}, ErrNoSession
	}
	return account, nil
}

// Logout drops the cached session.
func (s *Store) Logout(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	return s.kv.Delete(ctx, model.SessionCacheKey)
}

// Bootstrap loads the working copy and seeds the initial dataset when the
// backing store is empty (first run). Seed credentials are hashed before
// anything is persisted.
func (s *Store) Bootstrap(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	empty := len(s.snap.Accounts) == 0
	s.mu.RUnlock()
	if !empty {
		return nil
	}

	accounts := model.SeedAccounts()
	for i := range accounts {
		hash, err := auth.HashPassword(accounts[i].Password)
		if err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
		accounts[i].Password = hash
	}
	settings := model.DefaultSettings()
	citizens := model.SeedCitizens()

	s.mu.Lock()
	s.snap.Settings = settings
	s.snap.Citizens = citizens
	s.snap.Accounts = accounts
	s.mu.Unlock()

	// Seed persists synchronously: a half-seeded store is worse than a
	// failed startup.
	var errs []error
	errs = append(errs, s.backend.SaveSettings(ctx, settings))
	errs = append(errs, s.backend.SaveCitizens(ctx, citizens))
	errs = append(errs, s.backend.SaveAccounts(ctx, accounts))
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	s.mirrorAccounts(accounts)
	return nil
}
