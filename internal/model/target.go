package model

import "fmt"

// TargetType names the kind of entity a vote, comment, or bookmark attaches to.
type TargetType string

const (
	TargetQuestion TargetType = "question"
	TargetAnswer   TargetType = "answer"
)

// TargetRef identifies a question or answer by kind and id. Votes, comments,
// and bookmarks all attach through this one reference type instead of carrying
// loose target_id/target_type string pairs.
type TargetRef struct {
	Type TargetType `json:"target_type"`
	ID   int64      `json:"target_id"`
}

func (t TargetRef) Validate() error {
	switch t.Type {
	case TargetQuestion, TargetAnswer:
	default:
		return fmt.Errorf("unknown target type %q", t.Type)
	}
	if t.ID <= 0 {
		return fmt.Errorf("invalid target id %d", t.ID)
	}
	return nil
}
