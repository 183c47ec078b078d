package service

import (
	"context"
	"errors"
	"testing"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
)

func TestCreateAnswer_Success(t *testing.T) {
	e := newTestEnv(t)
	asker := e.registerUser(t, "kolin", "kolin@gmail.com")
	answerer := e.registerUser(t, "ada", "ada@example.com")
	qid := e.askQuestion(t, asker, "Needs an answer")

	a, err := e.answers.Create(context.Background(), answerer, qid, "Here is how.")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if a.IsAccepted {
		t.Error("new answer should not be accepted")
	}
	if a.Author.Username != "ada" {
		t.Errorf("Author.Username = %q, want %q", a.Author.Username, "ada")
	}

	// Answering alone must not flip the question's answered flag.
	q, err := e.questions.Get(context.Background(), qid)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if q.IsAnswered {
		t.Error("creating an answer must not mark the question answered")
	}
}

func TestCreateAnswer_UnknownQuestion(t *testing.T) {
	e := newTestEnv(t)
	id := e.registerUser(t, "kolin", "kolin@gmail.com")

	_, err := e.answers.Create(context.Background(), id, 99, "answering the void")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation for unknown question", err)
	}
}

func TestCreateAnswer_EmptyContent(t *testing.T) {
	e := newTestEnv(t)
	id := e.registerUser(t, "kolin", "kolin@gmail.com")
	qid := e.askQuestion(t, id, "Quiet question")

	_, err := e.answers.Create(context.Background(), id, qid, "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

// TestAccept_MovesBetweenAnswers accepts one answer, then another, and
// verifies at most one answer per question carries the flag at any point.
func TestAccept_MovesBetweenAnswers(t *testing.T) {
	e := newTestEnv(t)
	asker := e.registerUser(t, "kolin", "kolin@gmail.com")
	qid := e.askQuestion(t, asker, "Two candidates")

	a1, err := e.answers.Create(context.Background(), asker, qid, "first answer")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	a2, err := e.answers.Create(context.Background(), asker, qid, "second answer")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := e.answers.Accept(context.Background(), a1.ID); err != nil {
		t.Fatalf("Accept(a1) error = %v", err)
	}
	assertAccepted(t, e, qid, a1.ID)

	if err := e.answers.Accept(context.Background(), a2.ID); err != nil {
		t.Fatalf("Accept(a2) error = %v", err)
	}
	assertAccepted(t, e, qid, a2.ID)

	q, err := e.questions.Get(context.Background(), qid)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !q.IsAnswered {
		t.Error("question should be marked answered after accepting")
	}
}

// assertAccepted fails unless exactly the given answer is accepted for qid.
func assertAccepted(t *testing.T, e *env, qid, wantID int64) {
	t.Helper()
	views, err := e.answers.ForQuestion(context.Background(), qid)
	if err != nil {
		t.Fatalf("ForQuestion() error = %v", err)
	}
	accepted := 0
	for _, v := range views {
		if v.IsAccepted {
			accepted++
			if v.ID != wantID {
				t.Errorf("accepted answer = %d, want %d", v.ID, wantID)
			}
		}
	}
	if accepted != 1 {
		t.Errorf("accepted answers = %d, want exactly 1", accepted)
	}
}

func TestAccept_NotFound(t *testing.T) {
	e := newTestEnv(t)

	err := e.answers.Accept(context.Background(), 99)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// TestForQuestion_AcceptedFirst checks ordering: the accepted answer leads
// regardless of age, the rest come newest first.
func TestForQuestion_AcceptedFirst(t *testing.T) {
	e := newTestEnv(t)
	asker := e.registerUser(t, "kolin", "kolin@gmail.com")
	qid := e.askQuestion(t, asker, "Ordering")

	a1, _ := e.answers.Create(context.Background(), asker, qid, "oldest")
	if _, err := e.answers.Create(context.Background(), asker, qid, "middle"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := e.answers.Create(context.Background(), asker, qid, "newest"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := e.answers.Accept(context.Background(), a1.ID); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	views, err := e.answers.ForQuestion(context.Background(), qid)
	if err != nil {
		t.Fatalf("ForQuestion() error = %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("len = %d, want 3", len(views))
	}
	if views[0].ID != a1.ID {
		t.Errorf("first answer = %d, want accepted %d", views[0].ID, a1.ID)
	}
	if views[1].Content != "newest" {
		t.Errorf("second answer = %q, want %q (newest of the rest)", views[1].Content, "newest")
	}
}

func TestForQuestion_EmptyForUnknownQuestion(t *testing.T) {
	e := newTestEnv(t)

	views, err := e.answers.ForQuestion(context.Background(), 99)
	if err != nil {
		t.Fatalf("ForQuestion() error = %v", err)
	}
	if len(views) != 0 {
		t.Errorf("len = %d, want 0", len(views))
	}
}
