package models

import "time"

// Draft is an autosaved, not-yet-submitted composition buffer. Drafts live in
// Redis, scoped per user and per target post ("new" when composing), so they
// carry no GORM tags.
type Draft struct {
	Title   string    `json:"title,omitempty"`
	Body    string    `json:"body"`
	Team    string    `json:"team"`
	Tags    []string  `json:"tags"`
	Mood    string    `json:"mood"`
	SavedAt time.Time `json:"saved_at"`
}
