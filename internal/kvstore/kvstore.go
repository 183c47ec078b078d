// Package kvstore is the persistence layer: a document store keyed by
// collection name. Each collection is one JSON array; writes replace the
// whole document. There are no partial-write semantics — callers read,
// modify, and write back through Collection.Update, which serializes the
// cycle per collection.
//
// Two implementations exist: the durable sqlite-backed store (survives
// restarts, the "remember me" side of session persistence) and the in-memory
// store (process-scoped, the tab-session side, and the test double).
package kvstore

import "context"

// Collection names for every persisted entity kind.
const (
	ColUsers     = "users"
	ColQuestions = "questions"
	ColAnswers   = "answers"
	ColVotes     = "votes"
	ColTags      = "tags"
	ColComments  = "comments"
	ColBookmarks = "bookmarks"
	ColPrefs     = "prefs"

	// KeySession holds the active session document, not a collection.
	KeySession = "session"
)

// Store reads and writes whole collection documents.
// Get returns nil (not an error) for a collection that has never been written.
type Store interface {
	Get(ctx context.Context, collection string) ([]byte, error)
	Put(ctx context.Context, collection string, data []byte) error
	Delete(ctx context.Context, collection string) error
	Close() error
}

// Record is anything a Collection can hold. RecordID feeds NextID.
type Record interface {
	RecordID() int64
}

// NextID returns max(existing ids) + 1, or 1 when the slice is empty.
func NextID[T Record](records []T) int64 {
	var max int64
	for _, r := range records {
		if id := r.RecordID(); id > max {
			max = id
		}
	}
	return max + 1
}
