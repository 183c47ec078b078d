package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
)

const MaxTitleLength = 200

// QuestionService handles the question lifecycle. View counts increment only
// on a detail Get, never on listing; answer and vote counters are derived on
// every read.
type QuestionService struct {
	data   *Data
	tags   *TagService
	logger *slog.Logger
}

func NewQuestionService(data *Data, tags *TagService, logger *slog.Logger) *QuestionService {
	return &QuestionService{data: data, tags: tags, logger: logger}
}

// Create validates and saves a new question. Unknown tag names are created
// lazily before the question is written.
func (s *QuestionService) Create(ctx context.Context, userID int64, title, content string, tagNames []string) (*model.QuestionView, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	switch {
	case title == "":
		return nil, apperror.ValidationFailed("title", "title is required")
	case len(title) > MaxTitleLength:
		return nil, apperror.ValidationFailed("title", "title is too long")
	case content == "":
		return nil, apperror.ValidationFailed("content", "content is required")
	case len(tagNames) == 0:
		return nil, apperror.ValidationFailed("tags", "at least one tag is required")
	}

	canonical, err := s.tags.Ensure(ctx, tagNames)
	if err != nil {
		return nil, err
	}

	var created model.Question
	err = s.data.Questions.Update(ctx, func(questions []model.Question) ([]model.Question, error) {
		now := time.Now()
		created = model.Question{
			ID:         kvstore.NextID(questions),
			Title:      title,
			Content:    content,
			UserID:     userID,
			Tags:       canonical,
			CreatedAt:  now,
			UpdatedAt:  now,
			ViewCount:  0,
			IsAnswered: false,
		}
		return append(questions, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("question created",
		slog.Int64("questionID", created.ID),
		slog.Int64("userID", userID),
	)

	return s.assemble(ctx, created)
}

// Get returns one question's detail view. The view count increments by
// exactly one as a side effect; use List for side-effect-free reads.
func (s *QuestionService) Get(ctx context.Context, id int64) (*model.QuestionView, error) {
	var found model.Question
	err := s.data.Questions.Update(ctx, func(questions []model.Question) ([]model.Question, error) {
		for i, q := range questions {
			if q.ID == id {
				questions[i].ViewCount++
				found = questions[i]
				return questions, nil
			}
		}
		return nil, apperror.NotFound("question", id)
	})
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, found)
}

// MarkAnswered sets the answered flag. Idempotent; the accepted-answer flow
// calls this, and it exists on its own for completeness.
func (s *QuestionService) MarkAnswered(ctx context.Context, id int64, answered bool) error {
	return s.data.Questions.Update(ctx, func(questions []model.Question) ([]model.Question, error) {
		for i, q := range questions {
			if q.ID == id {
				questions[i].IsAnswered = answered
				return questions, nil
			}
		}
		return nil, apperror.NotFound("question", id)
	})
}

// assemble builds the read-time view for a single question.
func (s *QuestionService) assemble(ctx context.Context, q model.Question) (*model.QuestionView, error) {
	answers, err := s.data.Answers.All(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := s.data.Votes.All(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.data.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	view := questionView(q, answers, votes, users)
	return &view, nil
}
