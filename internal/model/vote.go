package model

import "time"

// VoteType is the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Vote records one user's vote on one target. The vote service guarantees at
// most one Vote per (user_id, target_id, target_type); casting again replaces
// the existing record rather than inserting a duplicate.
type Vote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Target    TargetRef `json:"target"`
	VoteType  VoteType  `json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (v Vote) RecordID() int64 { return v.ID }

// VoteCount is the derived tally for one target, always recomputed by
// scanning the votes collection.
type VoteCount struct {
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	TotalScore int `json:"total_score"`
}
