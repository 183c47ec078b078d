package model

import "time"

// Comment attaches to a question or answer through a TargetRef.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Target    TargetRef `json:"target"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Comment) RecordID() int64 { return c.ID }

// CommentView is a Comment plus its author brief.
type CommentView struct {
	Comment
	Author UserBrief `json:"author"`
}
