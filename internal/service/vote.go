package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
)

// VoteService handles voting. The collection holds at most one vote per
// (user, target); casting again replaces the existing record. Re-submitting
// the identical vote type is a silent no-op overwrite, not a toggle-off.
type VoteService struct {
	data   *Data
	logger *slog.Logger
}

func NewVoteService(data *Data, logger *slog.Logger) *VoteService {
	return &VoteService{data: data, logger: logger}
}

// Cast records userID's vote on target and adjusts the content owner's
// reputation by the delta the transition implies.
func (s *VoteService) Cast(ctx context.Context, userID int64, target model.TargetRef, voteType model.VoteType) (*model.Vote, error) {
	if err := target.Validate(); err != nil {
		return nil, apperror.ValidationFailed("target", err.Error())
	}
	if voteType != model.VoteUp && voteType != model.VoteDown {
		return nil, apperror.ValidationFailed("vote_type", "vote type must be up or down")
	}

	ownerID, err := s.targetOwner(ctx, target)
	if err != nil {
		return nil, err
	}

	var result model.Vote
	var previous model.VoteType // empty means no prior vote
	err = s.data.Votes.Update(ctx, func(votes []model.Vote) ([]model.Vote, error) {
		for i, v := range votes {
			if v.UserID != userID || v.Target != target {
				continue
			}
			previous = v.VoteType
			if v.VoteType == voteType {
				// Same direction again: exactly one record, unchanged.
				result = v
				return votes, nil
			}
			votes[i].VoteType = voteType
			votes[i].CreatedAt = time.Now()
			result = votes[i]
			return votes, nil
		}
		result = model.Vote{
			ID:        kvstore.NextID(votes),
			UserID:    userID,
			Target:    target,
			VoteType:  voteType,
			CreatedAt: time.Now(),
		}
		return append(votes, result), nil
	})
	if err != nil {
		return nil, err
	}

	if delta := reputationDelta(previous, voteType, target.Type); delta != 0 && ownerID != 0 {
		if err := s.adjustReputation(ctx, ownerID, delta); err != nil {
			return nil, err
		}
	}

	s.logger.Info("vote cast",
		slog.Int64("userID", userID),
		slog.String("targetType", string(target.Type)),
		slog.Int64("targetID", target.ID),
		slog.String("voteType", string(voteType)),
	)

	return &result, nil
}

// Count tallies the votes for one target.
func (s *VoteService) Count(ctx context.Context, target model.TargetRef) (model.VoteCount, error) {
	if err := target.Validate(); err != nil {
		return model.VoteCount{}, apperror.ValidationFailed("target", err.Error())
	}

	votes, err := s.data.Votes.All(ctx)
	if err != nil {
		return model.VoteCount{}, err
	}

	var count model.VoteCount
	for _, v := range votes {
		if v.Target != target {
			continue
		}
		if v.VoteType == model.VoteUp {
			count.Upvotes++
		} else {
			count.Downvotes++
		}
	}
	count.TotalScore = count.Upvotes - count.Downvotes
	return count, nil
}

// UserVote returns the caller's own vote on target, or nil.
func (s *VoteService) UserVote(ctx context.Context, userID int64, target model.TargetRef) (*model.Vote, error) {
	votes, err := s.data.Votes.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		if v.UserID == userID && v.Target == target {
			return &v, nil
		}
	}
	return nil, nil
}

// targetOwner resolves who authored the voted-on content. Unknown targets
// are a NotFound, guest-authored content reports owner 0.
func (s *VoteService) targetOwner(ctx context.Context, target model.TargetRef) (int64, error) {
	switch target.Type {
	case model.TargetQuestion:
		questions, err := s.data.Questions.All(ctx)
		if err != nil {
			return 0, err
		}
		for _, q := range questions {
			if q.ID == target.ID {
				return q.UserID, nil
			}
		}
		return 0, apperror.NotFound("question", target.ID)
	default:
		answers, err := s.data.Answers.All(ctx)
		if err != nil {
			return 0, err
		}
		for _, a := range answers {
			if a.ID == target.ID {
				return a.UserID, nil
			}
		}
		return 0, apperror.NotFound("answer", target.ID)
	}
}

func (s *VoteService) adjustReputation(ctx context.Context, userID int64, delta int) error {
	return s.data.Users.Update(ctx, func(users []model.User) ([]model.User, error) {
		for i, u := range users {
			if u.ID == userID {
				users[i].Reputation += delta
				return users, nil
			}
		}
		// Owner record gone (should not happen); reputation change is moot.
		return users, nil
	})
}

// reputationDelta is the owner's reputation change for a vote transition.
// prev is empty for a first vote. Answer votes weigh more than question
// votes; flipping a vote applies the reversal and the new vote at once.
func reputationDelta(prev, next model.VoteType, target model.TargetType) int {
	type transition struct {
		prev, next model.VoteType
	}
	questionDeltas := map[transition]int{
		{"", model.VoteUp}:             5,
		{"", model.VoteDown}:           -2,
		{model.VoteUp, model.VoteDown}: -7,
		{model.VoteDown, model.VoteUp}: 7,
	}
	answerDeltas := map[transition]int{
		{"", model.VoteUp}:             10,
		{"", model.VoteDown}:           -2,
		{model.VoteUp, model.VoteDown}: -12,
		{model.VoteDown, model.VoteUp}: 12,
	}

	t := transition{prev, next}
	if target == model.TargetQuestion {
		return questionDeltas[t]
	}
	return answerDeltas[t]
}
