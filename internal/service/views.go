package service

import (
	"github.com/queueoverflow/queueoverflow/internal/model"
)

// Derived-counter helpers. Counters are never persisted on the records they
// describe; these recompute them from the underlying collections every time
// a view is built, so a stored counter can never disagree with the votes or
// answers it summarizes.

// voteScore tallies upvotes minus downvotes for one target.
func voteScore(votes []model.Vote, target model.TargetRef) int {
	score := 0
	for _, v := range votes {
		if v.Target != target {
			continue
		}
		if v.VoteType == model.VoteUp {
			score++
		} else {
			score--
		}
	}
	return score
}

// answerCount counts live answers for a question.
func answerCount(answers []model.Answer, questionID int64) int {
	n := 0
	for _, a := range answers {
		if a.QuestionID == questionID {
			n++
		}
	}
	return n
}

// guestBrief is the author shown for guest-attributed content (user id 0).
var guestBrief = model.UserBrief{Username: "guest", DisplayName: "Guest"}

// userBrief resolves an author summary, falling back to the guest identity
// for content with no backing user record.
func userBrief(users []model.User, userID int64) model.UserBrief {
	if userID == 0 {
		return guestBrief
	}
	for _, u := range users {
		if u.ID == userID {
			return u.Brief()
		}
	}
	return guestBrief
}

// questionView assembles one question's read-time view from preloaded
// collections.
func questionView(q model.Question, answers []model.Answer, votes []model.Vote, users []model.User) model.QuestionView {
	return model.QuestionView{
		Question:    q,
		Author:      userBrief(users, q.UserID),
		AnswerCount: answerCount(answers, q.ID),
		VoteCount:   voteScore(votes, model.TargetRef{Type: model.TargetQuestion, ID: q.ID}),
	}
}

// answerView assembles one answer's read-time view.
func answerView(a model.Answer, votes []model.Vote, users []model.User) model.AnswerView {
	return model.AnswerView{
		Answer:    a,
		Author:    userBrief(users, a.UserID),
		VoteCount: voteScore(votes, model.TargetRef{Type: model.TargetAnswer, ID: a.ID}),
	}
}
