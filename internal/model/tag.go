package model

import (
	"strings"
	"time"
)

// Tag is a question label. Names are unique case-insensitively; tags are
// created lazily the first time a question uses them.
type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Tag) RecordID() int64 { return t.ID }

// NameEquals compares tag names the way the tag service does: case-insensitive.
func (t Tag) NameEquals(name string) bool {
	return strings.EqualFold(t.Name, name)
}

// TagView is a Tag plus its derived live-question count.
type TagView struct {
	Tag
	QuestionCount int `json:"question_count"`
}
