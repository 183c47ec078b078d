// Package service contains the business logic: entity lifecycle rules,
// derived counters, and the listing/query engine. Services sit between the
// RPC handlers and the kvstore collections; they validate input, enforce
// invariants, and return domain errors from internal/apperror.
package service

import (
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
)

// Data bundles the typed collections over the durable store. Every service
// shares the same Data so collection locks are shared too.
type Data struct {
	Users     *kvstore.Collection[model.User]
	Questions *kvstore.Collection[model.Question]
	Answers   *kvstore.Collection[model.Answer]
	Votes     *kvstore.Collection[model.Vote]
	Tags      *kvstore.Collection[model.Tag]
	Comments  *kvstore.Collection[model.Comment]
	Bookmarks *kvstore.Collection[model.Bookmark]
	Prefs     *kvstore.Collection[model.Prefs]
}

func NewData(store kvstore.Store) *Data {
	return &Data{
		Users:     kvstore.NewCollection[model.User](store, kvstore.ColUsers),
		Questions: kvstore.NewCollection[model.Question](store, kvstore.ColQuestions),
		Answers:   kvstore.NewCollection[model.Answer](store, kvstore.ColAnswers),
		Votes:     kvstore.NewCollection[model.Vote](store, kvstore.ColVotes),
		Tags:      kvstore.NewCollection[model.Tag](store, kvstore.ColTags),
		Comments:  kvstore.NewCollection[model.Comment](store, kvstore.ColComments),
		Bookmarks: kvstore.NewCollection[model.Bookmark](store, kvstore.ColBookmarks),
		Prefs:     kvstore.NewCollection[model.Prefs](store, kvstore.ColPrefs),
	}
}
