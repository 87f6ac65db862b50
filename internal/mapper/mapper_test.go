package mapper

import (
	"reflect"
	"testing"

	"github.com/yusapedia/jimpitan/internal/model"
)

func TestRoundTrip(t *testing.T) {
	t.Run("settings", func(t *testing.T) {
		in := model.Settings{VillageName: "RT 01", Address: "Jl. Merdeka No. 123", JimpitanNominal: 1000}
		out, ok := SettingsFromRow(SettingsToRow(in))
		if !ok {
			t.Fatal("expected row to be accepted")
		}
		if out != in {
			t.Errorf("round trip = %+v, want %+v", out, in)
		}
	})

	t.Run("citizen", func(t *testing.T) {
		in := model.Citizen{ID: "c1", Name: "Budi Santoso", ReguID: "regu-1", DisplayOrder: 3}
		out, ok := CitizenFromRow(CitizenToRow(in))
		if !ok {
			t.Fatal("expected row to be accepted")
		}
		if out != in {
			t.Errorf("round trip = %+v, want %+v", out, in)
		}
	})

	t.Run("citizen without regu", func(t *testing.T) {
		in := model.Citizen{ID: "c2", Name: "Siti Aminah", DisplayOrder: 1}
		row := CitizenToRow(in)
		if row["regu_id"] != nil {
			t.Errorf("empty regu reference should map to null, got %v", row["regu_id"])
		}
		out, ok := CitizenFromRow(row)
		if !ok || out != in {
			t.Errorf("round trip = %+v ok=%v, want %+v", out, ok, in)
		}
	})

	t.Run("account", func(t *testing.T) {
		in := model.Account{ID: "regu-1", Username: "Regu Melati", Password: "hash", Role: model.RoleRegu, ReguName: "Regu Melati"}
		out, ok := AccountFromRow(AccountToRow(in))
		if !ok || out != in {
			t.Errorf("round trip = %+v ok=%v, want %+v", out, ok, in)
		}
	})

	t.Run("jimpitan record", func(t *testing.T) {
		in := model.JimpitanRecord{
			ID: "j1", CitizenID: "c1", CitizenName: "Budi Santoso",
			Amount: 2500, JimpitanPortion: 1000, SavingsPortion: 1500,
			Date: "2026-01-10", ReguName: "Regu Melati", IsSent: true, IsSaved: true,
		}
		out, ok := JimpitanFromRow(JimpitanToRow(in))
		if !ok || out != in {
			t.Errorf("round trip = %+v ok=%v, want %+v", out, ok, in)
		}
	})

	t.Run("meeting", func(t *testing.T) {
		in := model.Meeting{ID: "m1", Agenda: "Rapat RT", Date: "2026-02-01", MinutesNumber: "MTG-1", Notes: "catatan"}
		out, ok := MeetingFromRow(MeetingToRow(in))
		if !ok || out != in {
			t.Errorf("round trip = %+v ok=%v, want %+v", out, ok, in)
		}
	})

	t.Run("attendance", func(t *testing.T) {
		in := model.Attendance{
			ID: model.AttendanceID("2026-01-10", "c1"), MeetingID: model.DefaultMeetingID,
			CitizenID: "c1", Status: model.StatusIzin, Reason: "sakit",
			Date: "2026-01-10", ReguID: "regu-1",
		}
		out, ok := AttendanceFromRow(AttendanceToRow(in))
		if !ok || out != in {
			t.Errorf("round trip = %+v ok=%v, want %+v", out, ok, in)
		}
	})
}

func TestFromRow_Defaulting(t *testing.T) {
	// Absent or null columns default to the entity's zero values, never to a
	// synthesized placeholder.
	row := Row{"id": "j1"}
	rec, ok := JimpitanFromRow(row)
	if !ok {
		t.Fatal("row with identifier must be accepted")
	}
	want := model.JimpitanRecord{ID: "j1"}
	if rec != want {
		t.Errorf("defaulted record = %+v, want %+v", rec, want)
	}

	att, ok := AttendanceFromRow(Row{"id": "a1", "reason": nil})
	if !ok {
		t.Fatal("row with identifier must be accepted")
	}
	if att.MeetingID != model.DefaultMeetingID {
		t.Errorf("absent meeting reference should default to %q, got %q", model.DefaultMeetingID, att.MeetingID)
	}
	if att.Reason != "" {
		t.Errorf("null reason should default to empty, got %q", att.Reason)
	}
}

func TestFromRow_MissingIdentifier(t *testing.T) {
	rows := []Row{
		{},
		{"id": nil},
		{"name": "no id at all"},
	}
	for _, row := range rows {
		if _, ok := CitizenFromRow(row); ok {
			t.Errorf("row %v without identifier must be dropped", row)
		}
		if _, ok := JimpitanFromRow(row); ok {
			t.Errorf("row %v without identifier must be dropped", row)
		}
	}
}

func TestRowID_RecordFormats(t *testing.T) {
	tests := []struct {
		name string
		id   interface{}
		want string
	}{
		{"plain string", "c1", "c1"},
		{"table-prefixed", "citizens:c1", "c1"},
		{"quoted record id", "citizens:⟨att-2026-01-10-c1⟩", "att-2026-01-10-c1"},
		{"map form", map[string]interface{}{"tb": "citizens", "id": "c1"}, "c1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RowID(Row{"id": tt.id})
			if !ok || got != tt.want {
				t.Errorf("RowID = %q ok=%v, want %q", got, ok, tt.want)
			}
		})
	}
}

func TestToRow_CompleteColumns(t *testing.T) {
	// Upserts replace whole rows, so every mapped column must be present
	// even when zero-valued.
	row := JimpitanToRow(model.JimpitanRecord{ID: "j1"})
	for _, col := range []string{
		"id", "citizen_id", "citizen_name", "amount", "jimpitan_portion",
		"savings_portion", "date", "regu_name", "is_sent", "is_saved",
	} {
		if _, present := row[col]; !present {
			t.Errorf("column %q missing from mapped row", col)
		}
	}
	if !reflect.DeepEqual(row["amount"], 0) {
		t.Errorf("zero amount must still be mapped, got %v", row["amount"])
	}
}
