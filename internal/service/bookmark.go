package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
)

// BookmarkService handles per-user saved questions and answers.
type BookmarkService struct {
	data   *Data
	logger *slog.Logger
}

func NewBookmarkService(data *Data, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{data: data, logger: logger}
}

func (s *BookmarkService) Create(ctx context.Context, userID int64, target model.TargetRef, title, note string) (*model.Bookmark, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if err := target.Validate(); err != nil {
		return nil, apperror.ValidationFailed("target", err.Error())
	}
	if _, err := s.targetContent(ctx, target); err != nil {
		return nil, err
	}

	var created model.Bookmark
	err := s.data.Bookmarks.Update(ctx, func(bookmarks []model.Bookmark) ([]model.Bookmark, error) {
		for _, b := range bookmarks {
			if b.UserID == userID && b.Target == target {
				return nil, apperror.Conflict("bookmark", "target already bookmarked")
			}
		}
		now := time.Now()
		created = model.Bookmark{
			ID:        kvstore.NextID(bookmarks),
			UserID:    userID,
			Target:    target,
			Title:     title,
			Note:      strings.TrimSpace(note),
			CreatedAt: now,
			UpdatedAt: now,
		}
		return append(bookmarks, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bookmark created",
		slog.Int64("bookmarkID", created.ID),
		slog.Int64("userID", userID),
	)

	return &created, nil
}

// ForUser returns one user's bookmarks, newest first.
func (s *BookmarkService) ForUser(ctx context.Context, userID int64) ([]model.Bookmark, error) {
	bookmarks, err := s.data.Bookmarks.All(ctx)
	if err != nil {
		return nil, err
	}

	mine := make([]model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.UserID == userID {
			mine = append(mine, b)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}

// Get returns one bookmark with its target's current content.
func (s *BookmarkService) Get(ctx context.Context, bookmarkID, userID int64) (*model.BookmarkView, error) {
	bookmarks, err := s.data.Bookmarks.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bookmarks {
		if b.ID != bookmarkID {
			continue
		}
		if b.UserID != userID {
			return nil, apperror.Forbidden("bookmark belongs to another user")
		}
		content, err := s.targetContent(ctx, b.Target)
		if err != nil {
			// Target since deleted: keep the bookmark usable, content empty.
			content = ""
		}
		return &model.BookmarkView{Bookmark: b, Content: content}, nil
	}
	return nil, apperror.NotFound("bookmark", bookmarkID)
}

func (s *BookmarkService) Update(ctx context.Context, bookmarkID, userID int64, title, note string) (*model.Bookmark, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}

	var updated model.Bookmark
	err := s.data.Bookmarks.Update(ctx, func(bookmarks []model.Bookmark) ([]model.Bookmark, error) {
		for i, b := range bookmarks {
			if b.ID != bookmarkID {
				continue
			}
			if b.UserID != userID {
				return nil, apperror.Forbidden("bookmark belongs to another user")
			}
			bookmarks[i].Title = title
			bookmarks[i].Note = strings.TrimSpace(note)
			bookmarks[i].UpdatedAt = time.Now()
			updated = bookmarks[i]
			return bookmarks, nil
		}
		return nil, apperror.NotFound("bookmark", bookmarkID)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *BookmarkService) Delete(ctx context.Context, bookmarkID, userID int64) error {
	return s.data.Bookmarks.Update(ctx, func(bookmarks []model.Bookmark) ([]model.Bookmark, error) {
		for i, b := range bookmarks {
			if b.ID != bookmarkID {
				continue
			}
			if b.UserID != userID {
				return nil, apperror.Forbidden("bookmark belongs to another user")
			}
			return append(bookmarks[:i], bookmarks[i+1:]...), nil
		}
		return nil, apperror.NotFound("bookmark", bookmarkID)
	})
}

func (s *BookmarkService) targetContent(ctx context.Context, target model.TargetRef) (string, error) {
	switch target.Type {
	case model.TargetQuestion:
		questions, err := s.data.Questions.All(ctx)
		if err != nil {
			return "", err
		}
		for _, q := range questions {
			if q.ID == target.ID {
				return q.Content, nil
			}
		}
		return "", apperror.NotFound("question", target.ID)
	default:
		answers, err := s.data.Answers.All(ctx)
		if err != nil {
			return "", err
		}
		for _, a := range answers {
			if a.ID == target.ID {
				return a.Content, nil
			}
		}
		return "", apperror.NotFound("answer", target.ID)
	}
}
