package models

import "time"

// Bookmark records that a user saved a post for later.
// Same uniqueness rule as Like: at most one per (user, post).
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
