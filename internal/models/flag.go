package models

import "time"

// FlagStatus defines the review state of a moderation flag.
type FlagStatus string

const (
	// FlagStatusPending indicates a flag is awaiting review.
	FlagStatusPending FlagStatus = "pending"
	// FlagStatusReviewed indicates a flag was reviewed and upheld.
	FlagStatusReviewed FlagStatus = "reviewed"
	// FlagStatusDismissed indicates a flag was reviewed and rejected.
	FlagStatusDismissed FlagStatus = "dismissed"
)

// Valid reports whether s is one of the known statuses.
func (s FlagStatus) Valid() bool {
	switch s {
	case FlagStatusPending, FlagStatusReviewed, FlagStatusDismissed:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
// reviewed and dismissed are terminal; moving back to pending is unsupported.
func (s FlagStatus) Terminal() bool {
	return s == FlagStatusReviewed || s == FlagStatusDismissed
}

// Flag is a user-submitted moderation report against a post.
// Multiple flags per (post, user) are allowed.
type Flag struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PostID    uint       `gorm:"not null;index" json:"post_id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Reason    string     `gorm:"not null" json:"reason"`
	Status    FlagStatus `gorm:"not null;default:pending" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
