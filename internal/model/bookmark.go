package model

import "time"

// Bookmark is a user's saved pointer to a question or answer, with an
// optional private note.
type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Target    TargetRef `json:"target"`
	Title     string    `json:"title"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Bookmark) RecordID() int64 { return b.ID }

// BookmarkView is a Bookmark plus the current content of its target, so a
// bookmarks page can render without a second lookup.
type BookmarkView struct {
	Bookmark
	Content string `json:"content"`
}
