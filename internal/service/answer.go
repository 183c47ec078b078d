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

// AnswerService handles answers and the accepted-answer flow.
type AnswerService struct {
	data   *Data
	logger *slog.Logger
}

func NewAnswerService(data *Data, logger *slog.Logger) *AnswerService {
	return &AnswerService{data: data, logger: logger}
}

// Create saves a new answer. Creating an answer never flips the question's
// answered flag; only accepting one does.
func (s *AnswerService) Create(ctx context.Context, userID, questionID int64, content string) (*model.AnswerView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	questions, err := s.data.Questions.All(ctx)
	if err != nil {
		return nil, err
	}
	known := false
	for _, q := range questions {
		if q.ID == questionID {
			known = true
			break
		}
	}
	if !known {
		return nil, apperror.ValidationFailed("question_id", "question does not exist")
	}

	var created model.Answer
	err = s.data.Answers.Update(ctx, func(answers []model.Answer) ([]model.Answer, error) {
		now := time.Now()
		created = model.Answer{
			ID:         kvstore.NextID(answers),
			QuestionID: questionID,
			UserID:     userID,
			Content:    content,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return append(answers, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("answer created",
		slog.Int64("answerID", created.ID),
		slog.Int64("questionID", questionID),
	)

	return s.assemble(ctx, created)
}

// Accept marks one answer as the question's solution. Any previously
// accepted answer for the same question loses the flag in the same
// collection write, so no reader can observe two accepted answers. The
// parent question's answered flag is then set and stays set.
func (s *AnswerService) Accept(ctx context.Context, answerID int64) error {
	var questionID int64
	err := s.data.Answers.Update(ctx, func(answers []model.Answer) ([]model.Answer, error) {
		idx := -1
		for i, a := range answers {
			if a.ID == answerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, apperror.NotFound("answer", answerID)
		}
		questionID = answers[idx].QuestionID

		for i, a := range answers {
			if a.QuestionID == questionID && a.IsAccepted {
				answers[i].IsAccepted = false
			}
		}
		answers[idx].IsAccepted = true
		answers[idx].UpdatedAt = time.Now()
		return answers, nil
	})
	if err != nil {
		return err
	}

	err = s.data.Questions.Update(ctx, func(questions []model.Question) ([]model.Question, error) {
		for i, q := range questions {
			if q.ID == questionID {
				questions[i].IsAnswered = true
				return questions, nil
			}
		}
		return nil, apperror.NotFound("question", questionID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("answer accepted",
		slog.Int64("answerID", answerID),
		slog.Int64("questionID", questionID),
	)
	return nil
}

// ForQuestion returns a question's answers, accepted answer first, then
// newest first.
func (s *AnswerService) ForQuestion(ctx context.Context, questionID int64) ([]model.AnswerView, error) {
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

	views := make([]model.AnswerView, 0, len(answers))
	for _, a := range answers {
		if a.QuestionID == questionID {
			views = append(views, answerView(a, votes, users))
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].IsAccepted != views[j].IsAccepted {
			return views[i].IsAccepted
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

func (s *AnswerService) assemble(ctx context.Context, a model.Answer) (*model.AnswerView, error) {
	votes, err := s.data.Votes.All(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.data.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	view := answerView(a, votes, users)
	return &view, nil
}
