package model

import "time"

// Question is the persisted question record.
//
// AnswerCount and the vote score are deliberately absent: they are derived
// counters, recomputed from the answers and votes collections every time a
// question is returned (see QuestionView). Persisting them would make the
// stored copy a second source of truth that can drift.
//
// Tags holds tag names, not ids, in the order the author supplied them.
type Question struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	UserID     int64     `json:"user_id"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ViewCount  int64     `json:"view_count"`
	IsAnswered bool      `json:"is_answered"`
}

func (q Question) RecordID() int64 { return q.ID }

// HasTag reports whether the question carries the named tag.
// Tag names are matched case-insensitively everywhere; callers pass the
// canonical (stored) name.
func (q Question) HasTag(name string) bool {
	for _, t := range q.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// QuestionView is a Question plus everything derived at read time.
type QuestionView struct {
	Question
	Author      UserBrief `json:"author"`
	AnswerCount int       `json:"answer_count"`
	VoteCount   int       `json:"vote_count"`
}
