package model

// Role tags an account with its function in the community. Roles are
// advisory: they select which dashboard an account sees, they are not an
// access-control mechanism.
type Role string

const (
	RoleAdmin Role = "ADMIN" // manages settings, citizens, meetings
	RoleRegu  Role = "REGU"  // collector group, gathers jimpitan and attendance
	RoleWarga Role = "WARGA" // household member, read-mostly
)

// AttendanceStatus enumerates the three attendance outcomes.
type AttendanceStatus string

const (
	StatusHadir      AttendanceStatus = "HADIR"
	StatusTidakHadir AttendanceStatus = "TIDAK_HADIR"
	StatusIzin       AttendanceStatus = "IZIN"
)

const (
	// SettingsID is the fixed key of the settings singleton row.
	SettingsID = "default"

	// DefaultMeetingID is the standing meeting reference used for recurring
	// night-patrol rounds that are not tied to a real meeting record.
	DefaultMeetingID = "ronda-harian"
)

// Settings is the singleton environment configuration. Only an admin
// mutates it; it is never deleted.
type Settings struct {
	VillageName     string `json:"villageName"`
	Address         string `json:"address"`
	JimpitanNominal int    `json:"jimpitanNominal"` // fixed fund amount per collection, in rupiah
}

// Citizen is a household tracked for contributions and attendance.
// DisplayOrder drives manual list ordering; values need not be contiguous.
// A citizen with an empty ReguID is unassigned.
type Citizen struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReguID       string `json:"reguId,omitempty"` // references an account with RoleRegu
	DisplayOrder int    `json:"displayOrder"`
}

// Account is an application login. Usernames are unique. Warga accounts are
// conventionally paired 1:1 with a citizen via WargaAccountID; nothing in the
// store enforces the pairing, so cascade deletion honors it explicitly.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"` // bcrypt hash
	Role     Role   `json:"role"`
	ReguName string `json:"reguName,omitempty"`
}

// IsAdmin returns true if the account has admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsRegu returns true if the account is a collector group
func (a *Account) IsRegu() bool {
	return a.Role == RoleRegu
}

// JimpitanRecord is one collection event. Its id is derived from
// (date, citizen) so resubmitting the same pair overwrites rather than
// duplicates. Amount is always equal to JimpitanPortion + SavingsPortion; the
// portions are computed once when the record is authored and never
// recomputed, even if the configured nominal changes later.
type JimpitanRecord struct {
	ID              string `json:"id"`
	CitizenID       string `json:"citizenId"`
	CitizenName     string `json:"citizenName"`
	Amount          int    `json:"amount"`
	JimpitanPortion int    `json:"jimpitanPortion"`
	SavingsPortion  int    `json:"savingsPortion"`
	Date            string `json:"date"` // calendar day, YYYY-MM-DD
	ReguName        string `json:"reguName"`
	IsSent          bool   `json:"isSent"`
	IsSaved         bool   `json:"isSaved"`
}

// Meeting is a community meeting with generated minutes reference.
type Meeting struct {
	ID            string `json:"id"`
	Agenda        string `json:"agenda"`
	Date          string `json:"date"`
	MinutesNumber string `json:"minutesNumber"`
	Notes         string `json:"notes"`
}

// Attendance records one citizen's presence on one day. The id is derived
// from (date, citizen) so resubmitting the same pair overwrites rather than
// duplicates.
type Attendance struct {
	ID        string           `json:"id"`
	MeetingID string           `json:"meetingId"`
	CitizenID string           `json:"citizenId"`
	Status    AttendanceStatus `json:"status"`
	Reason    string           `json:"reason,omitempty"`
	Date      string           `json:"date"`
	ReguID    string           `json:"reguId,omitempty"`
}

// AttendanceID derives the deterministic attendance key for a (date, citizen)
// pair.
func AttendanceID(date, citizenID string) string {
	return "att-" + date + "-" + citizenID
}

// JimpitanRecordID derives the deterministic contribution key for a
// (date, citizen) pair, so resubmitting a collection overwrites the earlier
// record.
func JimpitanRecordID(date, citizenID string) string {
	return "rec-" + date + "-" + citizenID
}

// WargaAccountID derives the id of the warga account paired with a citizen.
func WargaAccountID(citizenID string) string {
	return "warga-" + citizenID
}

// Collection names a remote table holding one of the six shared collections.
type Collection string

const (
	CollectionSettings    Collection = "settings"
	CollectionCitizens    Collection = "citizens"
	CollectionAccounts    Collection = "users_app"
	CollectionJimpitan    Collection = "jimpitan_records"
	CollectionMeetings    Collection = "meetings"
	CollectionAttendances Collection = "attendances"
)

// Collections returns all watched collections in a fixed order.
func Collections() []Collection {
	return []Collection{
		CollectionSettings,
		CollectionCitizens,
		CollectionAccounts,
		CollectionJimpitan,
		CollectionMeetings,
		CollectionAttendances,
	}
}

// CacheKey is the durable local cache key holding a collection's blob.
func CacheKey(c Collection) string {
	return "jimpitan_" + string(c)
}

// SessionCacheKey holds the current session's account for continuity across
// restarts.
const SessionCacheKey = "jimpitan_session"

// Snapshot is the complete in-memory working copy of the six collections.
type Snapshot struct {
	Settings    Settings         `json:"settings"`
	Citizens    []Citizen        `json:"citizens"`
	Accounts    []Account        `json:"accounts"`
	Jimpitan    []JimpitanRecord `json:"jimpitan"`
	Meetings    []Meeting        `json:"meetings"`
	Attendances []Attendance     `json:"attendances"`
}

// Clone returns a deep copy so callers can hand snapshots across goroutines
// without sharing slices.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Settings: s.Settings}
	out.Citizens = append([]Citizen(nil), s.Citizens...)
	out.Accounts = append([]Account(nil), s.Accounts...)
	out.Jimpitan = append([]JimpitanRecord(nil), s.Jimpitan...)
	out.Meetings = append([]Meeting(nil), s.Meetings...)
	out.Attendances = append([]Attendance(nil), s.Attendances...)
	return out
}
