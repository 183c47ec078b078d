package service

import (
	"context"

	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
)

// Caps for the rolling preference lists.
const (
	maxSearchHistory  = 10
	maxRecentlyViewed = 10
)

// PrefsService stores per-identity UI preferences: the sidebar flag, recent
// searches, and recently viewed questions. Keys come from
// session.Identity.OwnerKey, so guests get their own preference document.
type PrefsService struct {
	data *Data
}

func NewPrefsService(data *Data) *PrefsService {
	return &PrefsService{data: data}
}

// Get returns the identity's preferences, zero-valued when none were saved.
func (s *PrefsService) Get(ctx context.Context, ownerKey string) (model.Prefs, error) {
	prefs, err := s.data.Prefs.All(ctx)
	if err != nil {
		return model.Prefs{}, err
	}
	for _, p := range prefs {
		if p.OwnerKey == ownerKey {
			return p, nil
		}
	}
	return model.Prefs{OwnerKey: ownerKey}, nil
}

// SetSidebar persists the sidebar open/closed flag.
func (s *PrefsService) SetSidebar(ctx context.Context, ownerKey string, open bool) error {
	return s.mutate(ctx, ownerKey, func(p *model.Prefs) {
		p.SidebarOpen = open
	})
}

// RecordSearch pushes a term onto the search history: most recent first,
// deduplicated, capped.
func (s *PrefsService) RecordSearch(ctx context.Context, ownerKey, term string) error {
	if term == "" {
		return nil
	}
	return s.mutate(ctx, ownerKey, func(p *model.Prefs) {
		history := []string{term}
		for _, h := range p.SearchHistory {
			if h != term && len(history) < maxSearchHistory {
				history = append(history, h)
			}
		}
		p.SearchHistory = history
	})
}

// RecordView pushes a question onto the recently-viewed list, same policy as
// search history.
func (s *PrefsService) RecordView(ctx context.Context, ownerKey string, questionID int64) error {
	return s.mutate(ctx, ownerKey, func(p *model.Prefs) {
		recent := []int64{questionID}
		for _, id := range p.RecentlyViewed {
			if id != questionID && len(recent) < maxRecentlyViewed {
				recent = append(recent, id)
			}
		}
		p.RecentlyViewed = recent
	})
}

func (s *PrefsService) mutate(ctx context.Context, ownerKey string, fn func(*model.Prefs)) error {
	return s.data.Prefs.Update(ctx, func(prefs []model.Prefs) ([]model.Prefs, error) {
		for i := range prefs {
			if prefs[i].OwnerKey == ownerKey {
				fn(&prefs[i])
				return prefs, nil
			}
		}
		p := model.Prefs{ID: kvstore.NextID(prefs), OwnerKey: ownerKey}
		fn(&p)
		return append(prefs, p), nil
	})
}
