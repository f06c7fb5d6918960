package domain

import "time"

const (
	SettingsID         = 1
	DefaultTotalTables = 10
	MaxTotalTables     = 500
)

type RestaurantSettings struct {
	ID          int       `json:"id"`
	TotalTables int       `json:"total_tables"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func DefaultSettings() RestaurantSettings {
	return RestaurantSettings{ID: SettingsID, TotalTables: DefaultTotalTables}
}

// ValidTable reports whether table is a table number of this restaurant.
func (s RestaurantSettings) ValidTable(table int) bool {
	return table >= 1 && table <= s.TotalTables
}
