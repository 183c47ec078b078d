// Package main seeds the database with demo users, questions, answers,
// votes, and comments for local development.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/queueoverflow/queueoverflow/internal/auth"
	"github.com/queueoverflow/queueoverflow/internal/config"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
	"github.com/queueoverflow/queueoverflow/internal/model"
	"github.com/queueoverflow/queueoverflow/internal/service"
	"github.com/queueoverflow/queueoverflow/internal/session"
)

var users = []struct {
	username    string
	email       string
	password    string
	displayName string
}{
	{"kolin", "kolin@gmail.com", "kolin123", "Kolin"},
	{"ada", "ada@example.com", "lovelace1", "Ada L."},
	{"dennis", "dennis@example.com", "ritchie99", "Dennis R."},
}

var questions = []struct {
	author  int // index into users
	title   string
	content string
	tags    []string
	answers []struct {
		author  int
		content string
	}
}{
	{
		author:  1,
		title:   "How do I deep copy a slice of structs?",
		content: "Assigning one slice to another only copies the header. What is the idiomatic way to get an independent copy?",
		tags:    []string{"go", "slices"},
		answers: []struct {
			author  int
			content string
		}{
			{2, "Use the built-in copy function into a freshly allocated slice of the same length."},
			{0, "If the structs contain pointers you also need to clone what they point at."},
		},
	},
	{
		author:  2,
		title:   "Why does my goroutine leak when the channel is never read?",
		content: "I start a goroutine that sends on an unbuffered channel, but sometimes nobody receives. The goroutine count keeps growing.",
		tags:    []string{"go", "concurrency"},
		answers: []struct {
			author  int
			content string
		}{
			{1, "Send inside a select with a context cancellation case, or use a buffered channel sized for the worst case."},
		},
	},
	{
		author:  0,
		title:   "What is the difference between an index and a unique constraint?",
		content: "Both seem to speed up lookups. When do I want one over the other?",
		tags:    []string{"databases", "sql"},
		answers: nil,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("creating database directory: %v", err)
	}

	store, err := kvstore.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("creating token service: %v", err)
	}
	sessions := session.NewManager(store, kvstore.NewMemory(), tokens)

	data := service.NewData(store)
	userSvc := service.NewUserService(data, auth.NewPasswordService(), sessions, logger)
	tagSvc := service.NewTagService(data, logger)
	questionSvc := service.NewQuestionService(data, tagSvc, logger)
	answerSvc := service.NewAnswerService(data, logger)
	voteSvc := service.NewVoteService(data, logger)
	commentSvc := service.NewCommentService(data, logger)

	ctx := context.Background()

	var userIDs []int64
	for _, u := range users {
		created, err := userSvc.Register(ctx, u.username, u.email, u.password, u.displayName)
		if err != nil {
			log.Fatalf("registering %s: %v", u.username, err)
		}
		userIDs = append(userIDs, created.ID)
		log.Printf("registered %s (#%d)", u.username, created.ID)
	}

	for _, q := range questions {
		view, err := questionSvc.Create(ctx, userIDs[q.author], q.title, q.content, q.tags)
		if err != nil {
			log.Fatalf("creating question %q: %v", q.title, err)
		}
		log.Printf("created question #%d: %s", view.ID, q.title)

		var firstAnswer int64
		for _, a := range q.answers {
			av, err := answerSvc.Create(ctx, userIDs[a.author], view.ID, a.content)
			if err != nil {
				log.Fatalf("creating answer on #%d: %v", view.ID, err)
			}
			if firstAnswer == 0 {
				firstAnswer = av.ID
			}
			for _, voter := range userIDs {
				if voter == av.UserID {
					continue
				}
				target := model.TargetRef{Type: model.TargetAnswer, ID: av.ID}
				if _, err := voteSvc.Cast(ctx, voter, target, model.VoteUp); err != nil {
					log.Fatalf("voting on answer #%d: %v", av.ID, err)
				}
			}
		}
		if firstAnswer != 0 {
			if err := answerSvc.Accept(ctx, firstAnswer); err != nil {
				log.Fatalf("accepting answer #%d: %v", firstAnswer, err)
			}
		}

		target := model.TargetRef{Type: model.TargetQuestion, ID: view.ID}
		if _, err := voteSvc.Cast(ctx, userIDs[(q.author+1)%len(userIDs)], target, model.VoteUp); err != nil {
			log.Fatalf("voting on question #%d: %v", view.ID, err)
		}
		if _, err := commentSvc.Create(ctx, userIDs[(q.author+2)%len(userIDs)], target, "Good question, I ran into this last week."); err != nil {
			log.Fatalf("commenting on question #%d: %v", view.ID, err)
		}
	}

	// Registering leaves the last user signed in; the seeded DB should
	// start with no active session.
	if err := sessions.Clear(ctx); err != nil {
		log.Fatalf("clearing session: %v", err)
	}

	log.Printf("seed complete: %d users, %d questions", len(users), len(questions))
}
