// Package remote issues read-all, upsert-by-key and delete-by-filter
// operations against the named remote collections.
package remote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yusapedia/jimpitan/internal/database"
	"github.com/yusapedia/jimpitan/internal/mapper"
	"github.com/yusapedia/jimpitan/internal/model"
	"github.com/yusapedia/jimpitan/internal/store"
)

// Ensure Adapter satisfies the store's backend contract
var _ store.Backend = (*Adapter)(nil)

// Adapter is the online persistence backend. Upserts always carry complete
// mapped rows: the remote replace semantics would silently null out any
// omitted column.
type Adapter struct {
	db database.Database
}

// NewAdapter creates a remote adapter over an open database connection.
func NewAdapter(db database.Database) *Adapter {
	return &Adapter{db: db}
}

// readOrder holds the collection-specific read ordering. Collections not
// listed are unordered.
var readOrder = map[model.Collection]string{
	model.CollectionCitizens: "ORDER BY display_order ASC",
	model.CollectionJimpitan: "ORDER BY date DESC",
	model.CollectionMeetings: "ORDER BY date DESC",
}

// readRows fetches every row of a collection in its canonical order.
func (a *Adapter) readRows(ctx context.Context, c model.Collection) ([]mapper.Row, error) {
	query := "SELECT * FROM " + string(c)
	if order := readOrder[c]; order != "" {
		query += " " + order
	}

	results, err := a.db.Query(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}

	rows := make([]mapper.Row, 0)
	for _, result := range results {
		resp, ok := result.(map[string]interface{})
		if !ok {
			continue
		}
		if status, ok := resp["status"].(string); !ok || status != "OK" {
			continue
		}
		items, ok := resp["result"].([]interface{})
		if !ok {
			continue
		}
		for _, item := range items {
			if row, ok := item.(map[string]interface{}); ok {
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

// dropRow logs a row rejected by the field mapper. Rows without a usable
// identifier are never inserted into memory.
func dropRow(c model.Collection) {
	slog.Warn("dropping remote row without identifier", slog.String("collection", string(c)))
}

// ReadSettings fetches the settings singleton. found is false when the row
// does not exist yet.
func (a *Adapter) ReadSettings(ctx context.Context) (model.Settings, bool, error) {
	rows, err := a.readRows(ctx, model.CollectionSettings)
	if err != nil {
		return model.Settings{}, false, err
	}
	for _, row := range rows {
		if s, ok := mapper.SettingsFromRow(row); ok {
			return s, true, nil
		}
		dropRow(model.CollectionSettings)
	}
	return model.Settings{}, false, nil
}

// ReadCitizens fetches all citizens ordered by display order.
func (a *Adapter) ReadCitizens(ctx context.Context) ([]model.Citizen, error) {
	rows, err := a.readRows(ctx, model.CollectionCitizens)
	if err != nil {
		return nil, err
	}
	citizens := make([]model.Citizen, 0, len(rows))
	for _, row := range rows {
		c, ok := mapper.CitizenFromRow(row)
		if !ok {
			dropRow(model.CollectionCitizens)
			continue
		}
		citizens = append(citizens, c)
	}
	return citizens, nil
}

// ReadAccounts fetches all accounts.
func (a *Adapter) ReadAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := a.readRows(ctx, model.CollectionAccounts)
	if err != nil {
		return nil, err
	}
	accounts := make([]model.Account, 0, len(rows))
	for _, row := range rows {
		acc, ok := mapper.AccountFromRow(row)
		if !ok {
			dropRow(model.CollectionAccounts)
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// ReadJimpitan fetches all contribution records, newest first.
func (a *Adapter) ReadJimpitan(ctx context.Context) ([]model.JimpitanRecord, error) {
	rows, err := a.readRows(ctx, model.CollectionJimpitan)
	if err != nil {
		return nil, err
	}
	records := make([]model.JimpitanRecord, 0, len(rows))
	for _, row := range rows {
		r, ok := mapper.JimpitanFromRow(row)
		if !ok {
			dropRow(model.CollectionJimpitan)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// ReadMeetings fetches all meetings, newest first.
func (a *Adapter) ReadMeetings(ctx context.Context) ([]model.Meeting, error) {
	rows, err := a.readRows(ctx, model.CollectionMeetings)
	if err != nil {
		return nil, err
	}
	meetings := make([]model.Meeting, 0, len(rows))
	for _, row := range rows {
		m, ok := mapper.MeetingFromRow(row)
		if !ok {
			dropRow(model.CollectionMeetings)
			continue
		}
		meetings = append(meetings, m)
	}
	return meetings, nil
}

// ReadAttendances fetches all attendance records.
func (a *Adapter) ReadAttendances(ctx context.Context) ([]model.Attendance, error) {
	rows, err := a.readRows(ctx, model.CollectionAttendances)
	if err != nil {
		return nil, err
	}
	attendances := make([]model.Attendance, 0, len(rows))
	for _, row := range rows {
		att, ok := mapper.AttendanceFromRow(row)
		if !ok {
			dropRow(model.CollectionAttendances)
			continue
		}
		attendances = append(attendances, att)
	}
	return attendances, nil
}

// Load reads every collection into a fresh snapshot. A missing settings row
// falls back to the seed defaults.
func (a *Adapter) Load(ctx context.Context) (*model.Snapshot, error) {
	settings, found, err := a.ReadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		settings = model.DefaultSettings()
	}

	snap := &model.Snapshot{Settings: settings}
	if snap.Citizens, err = a.ReadCitizens(ctx); err != nil {
		return nil, err
	}
	if snap.Accounts, err = a.ReadAccounts(ctx); err != nil {
		return nil, err
	}
	if snap.Jimpitan, err = a.ReadJimpitan(ctx); err != nil {
		return nil, err
	}
	if snap.Meetings, err = a.ReadMeetings(ctx); err != nil {
		return nil, err
	}
	if snap.Attendances, err = a.ReadAttendances(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// upsertRows replaces rows by primary identifier, batching the whole
// collection write into one atomic transaction.
func (a *Adapter) upsertRows(ctx context.Context, c model.Collection, rows []mapper.Row) error {
	batch := database.NewAtomicBatch()
	for _, row := range rows {
		id, ok := mapper.RowID(row)
		if !ok {
			dropRow(c)
			continue
		}
		content := make(mapper.Row, len(row))
		for k, v := range row {
			if k != "id" {
				content[k] = v
			}
		}
		batch.Add("UPSERT type::thing($table, $id) CONTENT $data", map[string]interface{}{
			"table": string(c),
			"id":    id,
			"data":  content,
		})
	}
	if err := batch.Execute(ctx, a.db); err != nil {
		return fmt.Errorf("upsert %s: %w", c, err)
	}
	return nil
}

// SaveSettings upserts the settings singleton.
func (a *Adapter) SaveSettings(ctx context.Context, s model.Settings) error {
	return a.upsertRows(ctx, model.CollectionSettings, []mapper.Row{mapper.SettingsToRow(s)})
}

// SaveCitizens upserts the full citizen collection.
func (a *Adapter) SaveCitizens(ctx context.Context, citizens []model.Citizen) error {
	rows := make([]mapper.Row, 0, len(citizens))
	for _, c := range citizens {
		rows = append(rows, mapper.CitizenToRow(c))
	}
	return a.upsertRows(ctx, model.CollectionCitizens, rows)
}

// SaveAccounts upserts the full account collection.
func (a *Adapter) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	rows := make([]mapper.Row, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, mapper.AccountToRow(acc))
	}
	return a.upsertRows(ctx, model.CollectionAccounts, rows)
}

// SaveJimpitan upserts the full contribution collection.
func (a *Adapter) SaveJimpitan(ctx context.Context, records []model.JimpitanRecord) error {
	rows := make([]mapper.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, mapper.JimpitanToRow(r))
	}
	return a.upsertRows(ctx, model.CollectionJimpitan, rows)
}

// SaveMeetings upserts the full meeting collection.
func (a *Adapter) SaveMeetings(ctx context.Context, meetings []model.Meeting) error {
	rows := make([]mapper.Row, 0, len(meetings))
	for _, m := range meetings {
		rows = append(rows, mapper.MeetingToRow(m))
	}
	return a.upsertRows(ctx, model.CollectionMeetings, rows)
}

// SaveAttendances upserts the full attendance collection.
func (a *Adapter) SaveAttendances(ctx context.Context, attendances []model.Attendance) error {
	rows := make([]mapper.Row, 0, len(attendances))
	for _, att := range attendances {
		rows = append(rows, mapper.AttendanceToRow(att))
	}
	return a.upsertRows(ctx, model.CollectionAttendances, rows)
}

// DeleteAll removes every row of a collection.
func (a *Adapter) DeleteAll(ctx context.Context, c model.Collection) error {
	if err := a.db.Execute(ctx, "DELETE "+string(c), nil); err != nil {
		return fmt.Errorf("delete all %s: %w", c, err)
	}
	return nil
}

// DeleteWhere removes every row of c whose column equals value. Column names
// come from the declared cascade graph, never from user input.
func (a *Adapter) DeleteWhere(ctx context.Context, c model.Collection, column, value string) error {
	var err error
	if column == "id" {
		err = a.db.Execute(ctx, "DELETE type::thing($table, $id)", map[string]interface{}{
			"table": string(c),
			"id":    value,
		})
	} else {
		query := fmt.Sprintf("DELETE %s WHERE %s = $value", c, column)
		err = a.db.Execute(ctx, query, map[string]interface{}{"value": value})
	}
	if err != nil {
		return fmt.Errorf("delete %s where %s: %w", c, column, err)
	}
	return nil
}

// ClearReference nulls the column on every row of c referencing value.
func (a *Adapter) ClearReference(ctx context.Context, c model.Collection, column, value string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NONE WHERE %s = $value", c, column, column)
	if err := a.db.Execute(ctx, query, map[string]interface{}{"value": value}); err != nil {
		return fmt.Errorf("clear %s.%s: %w", c, column, err)
	}
	return nil
}
