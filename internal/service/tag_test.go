package service

import (
	"context"
	"errors"
	"testing"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
)

func TestEnsure_CreatesAndCanonicalizes(t *testing.T) {
	e := newTestEnv(t)

	first, err := e.tags.Ensure(context.Background(), []string{" Go ", "testing"})
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if len(first) != 2 || first[0] != "Go" || first[1] != "testing" {
		t.Errorf("canonical = %v, want [Go testing]", first)
	}

	// Different casing resolves to the stored name, not a new tag.
	second, err := e.tags.Ensure(context.Background(), []string{"GO", "Testing", "new"})
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	want := []string{"Go", "testing", "new"}
	for i, name := range want {
		if second[i] != name {
			t.Errorf("canonical[%d] = %q, want %q", i, second[i], name)
		}
	}

	tags, err := e.tags.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tags) != 3 {
		t.Errorf("tag count = %d, want 3", len(tags))
	}
}

func TestEnsure_DeduplicatesInput(t *testing.T) {
	e := newTestEnv(t)

	canonical, err := e.tags.Ensure(context.Background(), []string{"go", "GO", "Go"})
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if len(canonical) != 1 || canonical[0] != "go" {
		t.Errorf("canonical = %v, want [go]", canonical)
	}
}

func TestEnsure_BlankName(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.tags.Ensure(context.Background(), []string{"go", "  "})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCreateTag_Conflict(t *testing.T) {
	e := newTestEnv(t)

	if _, err := e.tags.Create(context.Background(), "go", "the language"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := e.tags.Create(context.Background(), "GO", "again")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict for case-insensitive duplicate", err)
	}
}

func TestGetTag_QuestionCountDerived(t *testing.T) {
	e := newTestEnv(t)
	id := e.registerUser(t, "kolin", "kolin@gmail.com")

	tag, err := e.tags.Create(context.Background(), "go", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	before, err := e.tags.Get(context.Background(), tag.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if before.QuestionCount != 0 {
		t.Errorf("QuestionCount = %d, want 0 before any question", before.QuestionCount)
	}

	e.askQuestion(t, id, "Uses the go tag")
	e.askQuestion(t, id, "Also uses it")

	after, err := e.tags.Get(context.Background(), tag.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.QuestionCount != 2 {
		t.Errorf("QuestionCount = %d, want 2", after.QuestionCount)
	}
}

func TestGetTag_NotFound(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.tags.Get(context.Background(), 99)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSearchTags(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.tags.Create(context.Background(), "golang", "the language"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := e.tags.Create(context.Background(), "rust", "also a language"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := e.tags.Create(context.Background(), "sql", "queries"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Matches name.
	byName, err := e.tags.Search(context.Background(), "GOL")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "golang" {
		t.Errorf("Search(GOL) = %v, want [golang]", byName)
	}

	// Matches description too.
	byDesc, err := e.tags.Search(context.Background(), "language")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(byDesc) != 2 {
		t.Errorf("Search(language) len = %d, want 2", len(byDesc))
	}
}

func TestListTags_SortedByName(t *testing.T) {
	e := newTestEnv(t)
	for _, name := range []string{"zebra", "Apple", "mango"} {
		if _, err := e.tags.Create(context.Background(), name, ""); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
	}

	tags, err := e.tags.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"Apple", "mango", "zebra"}
	for i, name := range want {
		if tags[i].Name != name {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i].Name, name)
		}
	}
}
