package models

// SortOrder selects feed ordering by creation time.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// Preference holds a user's persisted feed filter and sort settings.
type Preference struct {
	SortOrder   SortOrder `json:"sort_order"`
	Team        string    `json:"team,omitempty"`
	Mood        string    `json:"mood,omitempty"`
	Tags        []string  `json:"tags"`
	SavedOnly   bool      `json:"saved_only"`
	SearchQuery string    `json:"search_query"`
}

// DefaultPreference returns the settings applied when a user has none saved.
func DefaultPreference() Preference {
	return Preference{
		SortOrder: SortNewest,
		Tags:      []string{},
	}
}

// PreferenceUpdate carries the optional fields of a partial update.
// Nil means "leave as is".
type PreferenceUpdate struct {
	SortOrder   *SortOrder `json:"sort_order"`
	Team        *string    `json:"team"`
	Mood        *string    `json:"mood"`
	Tags        *[]string  `json:"tags"`
	SavedOnly   *bool      `json:"saved_only"`
	SearchQuery *string    `json:"search_query"`
}

// Apply merges the update over p and returns the result.
func (u PreferenceUpdate) Apply(p Preference) Preference {
	if u.SortOrder != nil {
		p.SortOrder = *u.SortOrder
	}
	if u.Team != nil {
		p.Team = *u.Team
	}
	if u.Mood != nil {
		p.Mood = *u.Mood
	}
	if u.Tags != nil {
		p.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.SavedOnly != nil {
		p.SavedOnly = *u.SavedOnly
	}
	if u.SearchQuery != nil {
		p.SearchQuery = *u.SearchQuery
	}
	return p
}
