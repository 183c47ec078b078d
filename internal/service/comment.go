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

// CommentService handles comments on questions and answers. Comments follow
// the same polymorphic-target pattern as votes and bookmarks.
type CommentService struct {
	data   *Data
	logger *slog.Logger
}

func NewCommentService(data *Data, logger *slog.Logger) *CommentService {
	return &CommentService{data: data, logger: logger}
}

func (s *CommentService) Create(ctx context.Context, userID int64, target model.TargetRef, content string) (*model.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if err := target.Validate(); err != nil {
		return nil, apperror.ValidationFailed("target", err.Error())
	}
	if err := s.targetExists(ctx, target); err != nil {
		return nil, err
	}

	var created model.Comment
	err := s.data.Comments.Update(ctx, func(comments []model.Comment) ([]model.Comment, error) {
		now := time.Now()
		created = model.Comment{
			ID:        kvstore.NextID(comments),
			UserID:    userID,
			Target:    target,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return append(comments, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		slog.Int64("commentID", created.ID),
		slog.String("targetType", string(target.Type)),
		slog.Int64("targetID", target.ID),
	)

	return s.assemble(ctx, created)
}

// ForTarget returns a target's comments, oldest first.
func (s *CommentService) ForTarget(ctx context.Context, target model.TargetRef) ([]model.CommentView, error) {
	if err := target.Validate(); err != nil {
		return nil, apperror.ValidationFailed("target", err.Error())
	}

	comments, err := s.data.Comments.All(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.data.Users.All(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]model.CommentView, 0, len(comments))
	for _, c := range comments {
		if c.Target == target {
			views = append(views, model.CommentView{Comment: c, Author: userBrief(users, c.UserID)})
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views, nil
}

// Update edits a comment's content. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, commentID, userID int64, content string) (*model.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	var updated model.Comment
	err := s.data.Comments.Update(ctx, func(comments []model.Comment) ([]model.Comment, error) {
		for i, c := range comments {
			if c.ID != commentID {
				continue
			}
			if c.UserID != userID {
				return nil, apperror.Forbidden("only the author can edit a comment")
			}
			comments[i].Content = content
			comments[i].UpdatedAt = time.Now()
			updated = comments[i]
			return comments, nil
		}
		return nil, apperror.NotFound("comment", commentID)
	})
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, updated)
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, commentID, userID int64) error {
	return s.data.Comments.Update(ctx, func(comments []model.Comment) ([]model.Comment, error) {
		for i, c := range comments {
			if c.ID != commentID {
				continue
			}
			if c.UserID != userID {
				return nil, apperror.Forbidden("only the author can delete a comment")
			}
			return append(comments[:i], comments[i+1:]...), nil
		}
		return nil, apperror.NotFound("comment", commentID)
	})
}

func (s *CommentService) targetExists(ctx context.Context, target model.TargetRef) error {
	switch target.Type {
	case model.TargetQuestion:
		questions, err := s.data.Questions.All(ctx)
		if err != nil {
			return err
		}
		for _, q := range questions {
			if q.ID == target.ID {
				return nil
			}
		}
		return apperror.NotFound("question", target.ID)
	default:
		answers, err := s.data.Answers.All(ctx)
		if err != nil {
			return err
		}
		for _, a := range answers {
			if a.ID == target.ID {
				return nil
			}
		}
		return apperror.NotFound("answer", target.ID)
	}
}

func (s *CommentService) assemble(ctx context.Context, c model.Comment) (*model.CommentView, error) {
	users, err := s.data.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	view := model.CommentView{Comment: c, Author: userBrief(users, c.UserID)}
	return &view, nil
}
