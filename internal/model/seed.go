package model

// Seed data applied on first run against an empty backing store. Mirrors the
// bootstrap dataset the community started with; credentials are hashed by the
// caller before anything is persisted.

// DefaultWargaPassword is the initial plaintext password of warga accounts
// auto-paired when a citizen is registered.
const DefaultWargaPassword = "warga123"

// DefaultSettings returns the initial environment configuration.
func DefaultSettings() Settings {
	return Settings{
		VillageName:     "RT 01 / RW 02 Desa Maju Jaya",
		Address:         "Jl. Merdeka No. 123",
		JimpitanNominal: 1000,
	}
}

// SeedCitizens returns the initial citizen roster.
func SeedCitizens() []Citizen {
	return []Citizen{
		{ID: "1", Name: "Budi Santoso", DisplayOrder: 1},
		{ID: "2", Name: "Siti Aminah", DisplayOrder: 2},
		{ID: "3", Name: "Agus Pratama", DisplayOrder: 3},
		{ID: "4", Name: "Dewi Lestari", DisplayOrder: 4},
	}
}

// SeedAccounts returns the initial accounts with plaintext passwords. The
// store hashes them before persisting.
func SeedAccounts() []Account {
	return []Account{
		{ID: "admin-1", Username: "admin", Password: "password123", Role: RoleAdmin},
		{ID: "regu-1", Username: "Regu Melati", Password: "regu123", Role: RoleRegu, ReguName: "Regu Melati"},
		{ID: "regu-2", Username: "Regu Mawar", Password: "regu123", Role: RoleRegu, ReguName: "Regu Mawar"},
		{ID: "warga-1", Username: "warga", Password: DefaultWargaPassword, Role: RoleWarga},
	}
}
