// Package mapper translates between the in-memory entity shape and the
// remote row shape of each collection.
//
// Every collection has a fixed, hand-maintained mapping here: ToRow builds
// the complete wire row (the remote upsert replaces whole rows, so a partial
// row would null out omitted columns), FromRow reads a loosely typed row back
// with defaulting for absent or null columns. A row missing its identifier
// column is reported via the ok result and must be dropped by the caller; an
// identifier is never synthesized.
package mapper

import (
	"encoding/json"
	"strings"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/yusapedia/jimpitan/internal/model"
)

// Row is the loosely typed shape rows take on the wire.
type Row = map[string]interface{}

// RowID extracts the identifier column, normalizing SurrealDB record ids.
// ok is false when the column is absent, null, or unparseable.
func RowID(row Row) (string, bool) {
	v, present := row["id"]
	if !present || v == nil {
		return "", false
	}
	id := recordID(v)
	return id, id != ""
}

// recordID converts the remote id representation to a plain string key.
func recordID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return bareID(id)
	case models.RecordID:
		return bareID(id.String())
	case *models.RecordID:
		if id != nil {
			return bareID(id.String())
		}
	case map[string]interface{}:
		// {"tb": "table", "id": "xxx"} format
		if inner, ok := id["id"].(string); ok {
			return inner
		}
	}

	// Try JSON marshaling as fallback
	if data, err := json.Marshal(v); err == nil {
		var rid models.RecordID
		if err := json.Unmarshal(data, &rid); err == nil {
			return bareID(rid.String())
		}
	}

	return ""
}

// bareID strips a "table:" prefix and SurrealDB id quoting, leaving the
// opaque key the collections use.
func bareID(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		id = id[i+1:]
	}
	id = strings.TrimPrefix(id, "⟨")
	id = strings.TrimSuffix(id, "⟩")
	return id
}

// SettingsToRow maps the settings singleton to its wire row.
func SettingsToRow(s model.Settings) Row {
	return Row{
		"id":               model.SettingsID,
		"village_name":     s.VillageName,
		"address":          s.Address,
		"jimpitan_nominal": s.JimpitanNominal,
	}
}

// SettingsFromRow reads the settings singleton back, defaulting absent
// columns.
func SettingsFromRow(row Row) (model.Settings, bool) {
	if _, ok := RowID(row); !ok {
		return model.Settings{}, false
	}
	return model.Settings{
		VillageName:     getString(row, "village_name"),
		Address:         getString(row, "address"),
		JimpitanNominal: getInt(row, "jimpitan_nominal"),
	}, true
}

// CitizenToRow maps a citizen to its wire row. An empty regu reference is
// stored as null.
func CitizenToRow(c model.Citizen) Row {
	return Row{
		"id":            c.ID,
		"name":          c.Name,
		"regu_id":       nullable(c.ReguID),
		"display_order": c.DisplayOrder,
	}
}

// CitizenFromRow reads a citizen back.
func CitizenFromRow(row Row) (model.Citizen, bool) {
	id, ok := RowID(row)
	if !ok {
		return model.Citizen{}, false
	}
	return model.Citizen{
		ID:           id,
		Name:         getString(row, "name"),
		ReguID:       getString(row, "regu_id"),
		DisplayOrder: getInt(row, "display_order"),
	}, true
}

// AccountToRow maps an account to its wire row.
func AccountToRow(a model.Account) Row {
	return Row{
		"id":        a.ID,
		"username":  a.Username,
		"password":  a.Password,
		"role":      string(a.Role),
		"regu_name": nullable(a.ReguName),
	}
}

// AccountFromRow reads an account back.
func AccountFromRow(row Row) (model.Account, bool) {
	id, ok := RowID(row)
	if !ok {
		return model.Account{}, false
	}
	return model.Account{
		ID:       id,
		Username: getString(row, "username"),
		Password: getString(row, "password"),
		Role:     model.Role(getString(row, "role")),
		ReguName: getString(row, "regu_name"),
	}, true
}

// JimpitanToRow maps a contribution record to its wire row.
func JimpitanToRow(r model.JimpitanRecord) Row {
	return Row{
		"id":               r.ID,
		"citizen_id":       r.CitizenID,
		"citizen_name":     r.CitizenName,
		"amount":           r.Amount,
		"jimpitan_portion": r.JimpitanPortion,
		"savings_portion":  r.SavingsPortion,
		"date":             r.Date,
		"regu_name":        r.ReguName,
		"is_sent":          r.IsSent,
		"is_saved":         r.IsSaved,
	}
}

// JimpitanFromRow reads a contribution record back. Missing numeric columns
// default to zero, missing flags to false.
func JimpitanFromRow(row Row) (model.JimpitanRecord, bool) {
	id, ok := RowID(row)
	if !ok {
		return model.JimpitanRecord{}, false
	}
	return model.JimpitanRecord{
		ID:              id,
		CitizenID:       getString(row, "citizen_id"),
		CitizenName:     getString(row, "citizen_name"),
		Amount:          getInt(row, "amount"),
		JimpitanPortion: getInt(row, "jimpitan_portion"),
		SavingsPortion:  getInt(row, "savings_portion"),
		Date:            getString(row, "date"),
		ReguName:        getString(row, "regu_name"),
		IsSent:          getBool(row, "is_sent"),
		IsSaved:         getBool(row, "is_saved"),
	}, true
}

// MeetingToRow maps a meeting to its wire row.
func MeetingToRow(m model.Meeting) Row {
	return Row{
		"id":             m.ID,
		"agenda":         m.Agenda,
		"date":           m.Date,
		"minutes_number": m.MinutesNumber,
		"notes":          m.Notes,
	}
}

// MeetingFromRow reads a meeting back.
func MeetingFromRow(row Row) (model.Meeting, bool) {
	id, ok := RowID(row)
	if !ok {
		return model.Meeting{}, false
	}
	return model.Meeting{
		ID:            id,
		Agenda:        getString(row, "agenda"),
		Date:          getString(row, "date"),
		MinutesNumber: getString(row, "minutes_number"),
		Notes:         getString(row, "notes"),
	}, true
}

// AttendanceToRow maps an attendance record to its wire row.
func AttendanceToRow(a model.Attendance) Row {
	return Row{
		"id":         a.ID,
		"meeting_id": a.MeetingID,
		"citizen_id": a.CitizenID,
		"status":     string(a.Status),
		"reason":     nullable(a.Reason),
		"date":       a.Date,
		"regu_id":    nullable(a.ReguID),
	}
}

// AttendanceFromRow reads an attendance record back. An absent meeting
// reference defaults to the recurring patrol meeting.
func AttendanceFromRow(row Row) (model.Attendance, bool) {
	id, ok := RowID(row)
	if !ok {
		return model.Attendance{}, false
	}
	meetingID := getString(row, "meeting_id")
	if meetingID == "" {
		meetingID = model.DefaultMeetingID
	}
	return model.Attendance{
		ID:        id,
		MeetingID: meetingID,
		CitizenID: getString(row, "citizen_id"),
		Status:    model.AttendanceStatus(getString(row, "status")),
		Reason:    getString(row, "reason"),
		Date:      getString(row, "date"),
		ReguID:    getString(row, "regu_id"),
	}, true
}

// nullable stores empty optional strings as null so the remote column is
// properly nulled rather than holding "".
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Typed getters with defaulting. Numeric columns come back as assorted types
// depending on codec, so every case is handled.

func getString(m Row, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getInt(m Row, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

func getBool(m Row, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
