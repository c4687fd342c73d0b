package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a meme shared to the feed.
//
// Tags are stored as a JSON array column so the model works unchanged on
// both Postgres and the sqlite test database.
type Post struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	UserID     uint     `gorm:"not null;index" json:"user_id"`
	User       User     `gorm:"foreignKey:UserID" json:"user"`
	AuthorName string   `gorm:"not null" json:"author_name"`
	Team       string   `gorm:"not null;index" json:"team"`
	Tags       []string `gorm:"serializer:json" json:"tags"`
	Mood       string   `json:"mood"`
	Title      string   `json:"title,omitempty"`
	Body       string   `gorm:"type:text;not null" json:"body"`
	// HasSpoiler is not persisted; derived from spoiler markers in Body.
	HasSpoiler bool           `gorm:"-" json:"has_spoiler"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostUpdate carries the optional fields of a PATCH. Nil means "leave as is".
// ID and CreatedAt are never touched; UpdatedAt is stamped by the store.
type PostUpdate struct {
	Title *string   `json:"title"`
	Body  *string   `json:"body"`
	Team  *string   `json:"team"`
	Mood  *string   `json:"mood"`
	Tags  *[]string `json:"tags"`
}
