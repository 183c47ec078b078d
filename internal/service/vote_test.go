package service

import (
	"context"
	"errors"
	"testing"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
	"github.com/queueoverflow/queueoverflow/internal/model"
)

// TestCast_SameDirectionTwice re-submits an identical vote and verifies the
// no-op: still one record, same direction, score unchanged.
func TestCast_SameDirectionTwice(t *testing.T) {
	e := newTestEnv(t)
	asker := e.registerUser(t, "kolin", "kolin@gmail.com")
	voter := e.registerUser(t, "ada", "ada@example.com")
	qid := e.askQuestion(t, asker, "Vote on me")

	first, err := e.votes.Cast(context.Background(), voter, questionTarget(qid), model.VoteUp)
	if err != nil {
		t.Fatalf("Cast() error = %v", err)
	}
	second, err := e.votes.Cast(context.Background(), voter, questionTarget(qid), model.VoteUp)
	if err != nil {
		t.Fatalf("second Cast() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second cast made a new record (%d vs %d), want the same one", second.ID, first.ID)
	}

	count, err := e.votes.Count(context.Background(), questionTarget(qid))
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count.Upvotes != 1 || count.Downvotes != 0 || count.TotalScore != 1 {
		t.Errorf("count = %+v, want exactly one upvote", count)
	}
}

// TestCast_FlipDirection flips up to down and verifies the single record is
// overwritten, never duplicated.
func TestCast_FlipDirection(t *testing.T) {
	e := newTestEnv(t)
	asker := e.registerUser(t, "kolin", "kolin@gmail.com")
	voter := e.registerUser(t, "ada", "ada@example.com")
	qid := e.askQuestion(t, asker, "Flip the vote")

	if _, err := e.votes.Cast(context.Background(), voter, questionTarget(qid), model.VoteUp); err != nil {
		t.Fatalf("Cast(up) error = %v", err)
	}
	flipped, err := e.votes.Cast(context.Background(), voter, questionTarget(qid), model.VoteDown)
	if err != nil {
		t.Fatalf("Cast(down) error = %v", err)
	}
	if flipped.VoteType != model.VoteDown {
		t.Errorf("VoteType = %q, want down", flipped.VoteType)
	}

	count, err := e.votes.Count(context.Background(), questionTarget(qid))
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count.Upvotes != 0 || count.Downvotes != 1 || count.TotalScore != -1 {
		t.Errorf("count = %+v, want one downvote only", count)
	}
}

func TestCast_UnknownTarget(t *testing.T) {
	e := newTestEnv(t)
	voter := e.registerUser(t, "ada", "ada@example.com")

	_, err := e.votes.Cast(context.Background(), voter, questionTarget(99), model.VoteUp)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCast_InvalidInput(t *testing.T) {
	e := newTestEnv(t)
	voter := e.registerUser(t, "ada", "ada@example.com")

	if _, err := e.votes.Cast(context.Background(), voter, model.TargetRef{Type: "story", ID: 1}, model.VoteUp); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("bad target type: error = %v, want ErrValidation", err)
	}
	if _, err := e.votes.Cast(context.Background(), voter, questionTarget(1), "sideways"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("bad vote type: error = %v, want ErrValidation", err)
	}
}

func TestUserVote_NilWhenAbsent(t *testing.T) {
	e := newTestEnv(t)
	asker := e.registerUser(t, "kolin", "kolin@gmail.com")
	qid := e.askQuestion(t, asker, "No vote yet")

	v, err := e.votes.UserVote(context.Background(), asker, questionTarget(qid))
	if err != nil {
		t.Fatalf("UserVote() error = %v", err)
	}
	if v != nil {
		t.Errorf("UserVote() = %+v, want nil", v)
	}
}

// TestReputation_QuestionVotes walks the question-vote transitions and the
// owner's reputation after each: +5 for a new upvote, -7 flipping to down,
// +7 flipping back.
func TestReputation_QuestionVotes(t *testing.T) {
	e := newTestEnv(t)
	owner := e.registerUser(t, "kolin", "kolin@gmail.com")
	voter := e.registerUser(t, "ada", "ada@example.com")
	qid := e.askQuestion(t, owner, "Reputation source")

	steps := []struct {
		vote model.VoteType
		want int
	}{
		{model.VoteUp, 5},
		{model.VoteUp, 5},    // no-op repeat
		{model.VoteDown, -2}, // 5 - 7
		{model.VoteUp, 5},    // -2 + 7
	}
	for i, step := range steps {
		if _, err := e.votes.Cast(context.Background(), voter, questionTarget(qid), step.vote); err != nil {
			t.Fatalf("step %d: Cast() error = %v", i, err)
		}
		u, err := e.users.GetUser(context.Background(), owner)
		if err != nil {
			t.Fatalf("step %d: GetUser() error = %v", i, err)
		}
		if u.Reputation != step.want {
			t.Errorf("step %d: Reputation = %d, want %d", i, u.Reputation, step.want)
		}
	}
}

// TestReputation_AnswerVotes checks the heavier answer weights: +10 for a new
// upvote, -2 for a new downvote on a second answer.
func TestReputation_AnswerVotes(t *testing.T) {
	e := newTestEnv(t)
	asker := e.registerUser(t, "kolin", "kolin@gmail.com")
	owner := e.registerUser(t, "ada", "ada@example.com")
	qid := e.askQuestion(t, asker, "Answer reputation")

	a1, err := e.answers.Create(context.Background(), owner, qid, "first")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	a2, err := e.answers.Create(context.Background(), owner, qid, "second")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := e.votes.Cast(context.Background(), asker, answerTarget(a1.ID), model.VoteUp); err != nil {
		t.Fatalf("Cast(up) error = %v", err)
	}
	if _, err := e.votes.Cast(context.Background(), asker, answerTarget(a2.ID), model.VoteDown); err != nil {
		t.Fatalf("Cast(down) error = %v", err)
	}

	u, err := e.users.GetUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.Reputation != 8 { // +10 - 2
		t.Errorf("Reputation = %d, want 8", u.Reputation)
	}
}

// TestReputation_GuestContentSkipped votes on guest-authored content; there
// is no owner record, so no reputation moves anywhere.
func TestReputation_GuestContentSkipped(t *testing.T) {
	e := newTestEnv(t)
	voter := e.registerUser(t, "ada", "ada@example.com")

	q, err := e.questions.Create(context.Background(), 0, "Guest question", "content", []string{"go"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := e.votes.Cast(context.Background(), voter, questionTarget(q.ID), model.VoteUp); err != nil {
		t.Fatalf("Cast() error = %v", err)
	}

	count, err := e.votes.Count(context.Background(), questionTarget(q.ID))
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count.TotalScore != 1 {
		t.Errorf("TotalScore = %d, want 1", count.TotalScore)
	}
}
