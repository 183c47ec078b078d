package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/queueoverflow/queueoverflow/internal/auth"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
	"github.com/queueoverflow/queueoverflow/internal/session"
)

func questionTarget(id int64) model.TargetRef {
	return model.TargetRef{Type: model.TargetQuestion, ID: id}
}

func answerTarget(id int64) model.TargetRef {
	return model.TargetRef{Type: model.TargetAnswer, ID: id}
}

// env wires every service over a fresh in-memory store. Tests share one env
// per test function, never across tests.
type env struct {
	data      *Data
	sessions  *session.Manager
	users     *UserService
	tags      *TagService
	questions *QuestionService
	answers   *AnswerService
	votes     *VoteService
	comments  *CommentService
	bookmarks *BookmarkService
	prefs     *PrefsService
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars", time.Hour)
	if err != nil {
		t.Fatalf("setup: NewTokenService() error = %v", err)
	}

	durable := kvstore.NewMemory()
	scoped := kvstore.NewMemory()
	sessions := session.NewManager(durable, scoped, tokens)

	data := NewData(durable)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	tags := NewTagService(data, logger)
	return &env{
		data:      data,
		sessions:  sessions,
		users:     NewUserService(data, passwords, sessions, logger),
		tags:      tags,
		questions: NewQuestionService(data, tags, logger),
		answers:   NewAnswerService(data, logger),
		votes:     NewVoteService(data, logger),
		comments:  NewCommentService(data, logger),
		bookmarks: NewBookmarkService(data, logger),
		prefs:     NewPrefsService(data),
	}
}

// registerUser is a setup shortcut for tests that just need an account.
func (e *env) registerUser(t *testing.T, username, email string) int64 {
	t.Helper()
	u, err := e.users.Register(context.Background(), username, email, "password123", username)
	if err != nil {
		t.Fatalf("setup: Register(%s) error = %v", username, err)
	}
	return u.ID
}

// askQuestion is a setup shortcut that creates a question with one tag.
func (e *env) askQuestion(t *testing.T, userID int64, title string) int64 {
	t.Helper()
	q, err := e.questions.Create(context.Background(), userID, title, "some content for "+title, []string{"go"})
	if err != nil {
		t.Fatalf("setup: Create question %q error = %v", title, err)
	}
	return q.ID
}
