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

// TagService owns the tag collection. Tags are created lazily the first time
// a question uses a new name; names are unique case-insensitively and the
// first-seen casing becomes the canonical one.
type TagService struct {
	data   *Data
	logger *slog.Logger
}

func NewTagService(data *Data, logger *slog.Logger) *TagService {
	return &TagService{data: data, logger: logger}
}

// Ensure resolves every name to its canonical stored form, creating tags
// that do not exist yet. The returned slice preserves input order.
func (s *TagService) Ensure(ctx context.Context, names []string) ([]string, error) {
	canonical := make([]string, 0, len(names))

	err := s.data.Tags.Update(ctx, func(tags []model.Tag) ([]model.Tag, error) {
		for _, raw := range names {
			name := strings.TrimSpace(raw)
			if name == "" {
				return nil, apperror.ValidationFailed("tags", "tag names cannot be blank")
			}
			if dup(canonical, name) {
				continue
			}

			existing := ""
			for _, t := range tags {
				if t.NameEquals(name) {
					existing = t.Name
					break
				}
			}
			if existing != "" {
				canonical = append(canonical, existing)
				continue
			}

			now := time.Now()
			tags = append(tags, model.Tag{
				ID:        kvstore.NextID(tags),
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			})
			canonical = append(canonical, name)
		}
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return canonical, nil
}

func dup(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Create makes a tag directly, before any question uses it.
func (s *TagService) Create(ctx context.Context, name, description string) (*model.TagView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "tag name is required")
	}

	var created model.Tag
	err := s.data.Tags.Update(ctx, func(tags []model.Tag) ([]model.Tag, error) {
		for _, t := range tags {
			if t.NameEquals(name) {
				return nil, apperror.Conflict("tag", "name already exists")
			}
		}
		now := time.Now()
		created = model.Tag{
			ID:          kvstore.NextID(tags),
			Name:        name,
			Description: strings.TrimSpace(description),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return append(tags, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag created", slog.Int64("tagID", created.ID), slog.String("name", created.Name))

	view := model.TagView{Tag: created}
	return &view, nil
}

// Get returns one tag with its derived question count.
func (s *TagService) Get(ctx context.Context, id int64) (*model.TagView, error) {
	tags, err := s.data.Tags.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if t.ID == id {
			view, err := s.view(ctx, t)
			if err != nil {
				return nil, err
			}
			return &view, nil
		}
	}
	return nil, apperror.NotFound("tag", id)
}

// List returns all tags sorted by name, each with its question count.
func (s *TagService) List(ctx context.Context) ([]model.TagView, error) {
	return s.filtered(ctx, "")
}

// Search matches tag names and descriptions by case-insensitive substring.
func (s *TagService) Search(ctx context.Context, term string) ([]model.TagView, error) {
	return s.filtered(ctx, strings.ToLower(strings.TrimSpace(term)))
}

func (s *TagService) filtered(ctx context.Context, term string) ([]model.TagView, error) {
	tags, err := s.data.Tags.All(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := s.data.Questions.All(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]model.TagView, 0, len(tags))
	for _, t := range tags {
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Name), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		views = append(views, model.TagView{Tag: t, QuestionCount: tagQuestionCount(questions, t.Name)})
	}

	sort.Slice(views, func(i, j int) bool {
		return strings.ToLower(views[i].Name) < strings.ToLower(views[j].Name)
	})
	return views, nil
}

func (s *TagService) view(ctx context.Context, t model.Tag) (model.TagView, error) {
	questions, err := s.data.Questions.All(ctx)
	if err != nil {
		return model.TagView{}, err
	}
	return model.TagView{Tag: t, QuestionCount: tagQuestionCount(questions, t.Name)}, nil
}

// tagQuestionCount derives the live number of questions carrying the tag.
func tagQuestionCount(questions []model.Question, name string) int {
	n := 0
	for _, q := range questions {
		for _, t := range q.Tags {
			if strings.EqualFold(t, name) {
				n++
				break
			}
		}
	}
	return n
}
