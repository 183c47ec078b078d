package model

import "time"

// Answer is the persisted answer record. At most one answer per question may
// have IsAccepted set; the answer service enforces that in its accept pass.
type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	UserID     int64     `json:"user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsAccepted bool      `json:"is_accepted"`
}

func (a Answer) RecordID() int64 { return a.ID }

// AnswerView is an Answer plus its author and derived vote score.
type AnswerView struct {
	Answer
	Author    UserBrief `json:"author"`
	VoteCount int       `json:"vote_count"`
}
