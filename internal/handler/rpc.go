package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/queueoverflow/queueoverflow/internal/apperror"
	"github.com/queueoverflow/queueoverflow/internal/model"
	"github.com/queueoverflow/queueoverflow/internal/service"
	"github.com/queueoverflow/queueoverflow/internal/session"
)

// commandFunc runs one RPC command against its decoded argument bag.
type commandFunc func(ctx context.Context, args json.RawMessage) (any, error)

// RPC dispatches POST /api/rpc/{command} to the matching service call.
// Command names and argument bags are snake_case and mirror the service
// operations one to one.
type RPC struct {
	users     *service.UserService
	questions *service.QuestionService
	answers   *service.AnswerService
	votes     *service.VoteService
	tags      *service.TagService
	comments  *service.CommentService
	bookmarks *service.BookmarkService
	prefs     *service.PrefsService
	sessions  *session.Manager
	logger    *slog.Logger

	commands map[string]commandFunc
}

// Services bundles everything the RPC surface dispatches to.
type Services struct {
	Users     *service.UserService
	Questions *service.QuestionService
	Answers   *service.AnswerService
	Votes     *service.VoteService
	Tags      *service.TagService
	Comments  *service.CommentService
	Bookmarks *service.BookmarkService
	Prefs     *service.PrefsService
	Sessions  *session.Manager
}

func NewRPC(svcs Services, logger *slog.Logger) *RPC {
	h := &RPC{
		users:     svcs.Users,
		questions: svcs.Questions,
		answers:   svcs.Answers,
		votes:     svcs.Votes,
		tags:      svcs.Tags,
		comments:  svcs.Comments,
		bookmarks: svcs.Bookmarks,
		prefs:     svcs.Prefs,
		sessions:  svcs.Sessions,
		logger:    logger,
	}
	h.commands = map[string]commandFunc{
		"register":             h.register,
		"login":                h.login,
		"logout":               h.logout,
		"guest_session":        h.guestSession,
		"get_current_user":     h.getCurrentUser,
		"update_profile":       h.updateProfile,
		"change_password":      h.changePassword,
		"get_user":             h.getUser,
		"search_users":         h.searchUsers,
		"create_question":      h.createQuestion,
		"get_question":         h.getQuestion,
		"list_questions":       h.listQuestions,
		"mark_answered":        h.markAnswered,
		"create_answer":        h.createAnswer,
		"get_question_answers": h.getQuestionAnswers,
		"accept_answer":        h.acceptAnswer,
		"create_vote":          h.createVote,
		"get_vote_count":       h.getVoteCount,
		"get_user_vote":        h.getUserVote,
		"create_tag":           h.createTag,
		"get_tag":              h.getTag,
		"list_tags":            h.listTags,
		"search_tags":          h.searchTags,
		"create_comment":       h.createComment,
		"get_comments":         h.getComments,
		"update_comment":       h.updateComment,
		"delete_comment":       h.deleteComment,
		"create_bookmark":      h.createBookmark,
		"list_bookmarks":       h.listBookmarks,
		"get_bookmark":         h.getBookmark,
		"update_bookmark":      h.updateBookmark,
		"delete_bookmark":      h.deleteBookmark,
		"get_prefs":            h.getPrefs,
		"set_sidebar":          h.setSidebar,
		"record_search":        h.recordSearch,
		"record_view":          h.recordView,
	}
	return h
}

// Routes mounts the command dispatcher on a chi router.
func (h *RPC) Routes(r chi.Router) {
	r.Post("/rpc/{command}", h.Handle)
}

// Handle decodes the argument bag, dispatches, and writes the result.
// The request body is the args bag itself; an empty body means no args.
func (h *RPC) Handle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	cmd, ok := h.commands[name]
	if !ok {
		writeError(w, apperror.NotFoundName("command", name))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperror.ValidationFailed("body", "could not read request body"))
		return
	}
	args := json.RawMessage(body)
	if len(body) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := cmd(r.Context(), args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decode[T any](args json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(args, &v); err != nil {
		return v, apperror.ValidationFailed("args", "malformed argument bag")
	}
	return v, nil
}

// --- identity & session ---

func (h *RPC) register(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		Request struct {
			Username    string `json:"username"`
			Email       string `json:"email"`
			Password    string `json:"password"`
			DisplayName string `json:"display_name"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	user, err := h.users.Register(ctx, in.Request.Username, in.Request.Email, in.Request.Password, in.Request.DisplayName)
	if err != nil {
		return nil, err
	}
	return map[string]any{"user": user, "token": h.sessions.Token()}, nil
}

func (h *RPC) login(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		Request struct {
			Email      string `json:"email"`
			Password   string `json:"password"`
			RememberMe bool   `json:"remember_me"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	user, err := h.users.Login(ctx, in.Request.Email, in.Request.Password, in.Request.RememberMe)
	if err != nil {
		return nil, err
	}
	return map[string]any{"user": user, "token": h.sessions.Token()}, nil
}

func (h *RPC) logout(ctx context.Context, _ json.RawMessage) (any, error) {
	if err := h.users.Logout(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (h *RPC) guestSession(ctx context.Context, _ json.RawMessage) (any, error) {
	ident, err := h.users.ContinueAsGuest(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"guest_key": ident.GuestKey}, nil
}

func (h *RPC) getCurrentUser(ctx context.Context, _ json.RawMessage) (any, error) {
	user, err := h.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"user":             user,
		"is_authenticated": h.users.IsAuthenticated(),
		"is_guest":         h.users.IsGuest(),
	}, nil
}

func (h *RPC) updateProfile(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID  int64 `json:"user_id"`
		Request struct {
			DisplayName *string `json:"display_name"`
			Bio         *string `json:"bio"`
			AvatarURL   *string `json:"avatar_url"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.users.UpdateProfile(ctx, in.UserID, in.Request.DisplayName, in.Request.Bio, in.Request.AvatarURL)
}

func (h *RPC) changePassword(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID  int64 `json:"user_id"`
		Request struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.users.ChangePassword(ctx, in.UserID, in.Request.CurrentPassword, in.Request.NewPassword); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (h *RPC) getUser(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		ID int64 `json:"id"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.users.GetUser(ctx, in.ID)
}

func (h *RPC) searchUsers(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		Query string `json:"query"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.users.SearchUsers(ctx, in.Query)
}

// --- questions ---

func (h *RPC) createQuestion(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID  int64 `json:"user_id"`
		Request struct {
			Title   string   `json:"title"`
			Content string   `json:"content"`
			Tags    []string `json:"tags"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.questions.Create(ctx, in.UserID, in.Request.Title, in.Request.Content, in.Request.Tags)
}

func (h *RPC) getQuestion(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		ID int64 `json:"id"`
	}](args)
	if err != nil {
		return nil, err
	}
	view, err := h.questions.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	// Detail views feed the recently-viewed preference list.
	if ident := h.sessions.Current(); !ident.IsZero() {
		if err := h.prefs.RecordView(ctx, ident.OwnerKey(), in.ID); err != nil {
			h.logger.Warn("recording view", slog.String("error", err.Error()))
		}
	}
	return view, nil
}

func (h *RPC) listQuestions(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		Query service.Query `json:"query"`
	}](args)
	if err != nil {
		return nil, err
	}
	views, err := h.questions.List(ctx, in.Query)
	if err != nil {
		return nil, err
	}
	if ident := h.sessions.Current(); !ident.IsZero() && in.Query.Search != "" {
		if err := h.prefs.RecordSearch(ctx, ident.OwnerKey(), in.Query.Search); err != nil {
			h.logger.Warn("recording search", slog.String("error", err.Error()))
		}
	}
	return views, nil
}

func (h *RPC) markAnswered(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		ID       int64 `json:"id"`
		Answered bool  `json:"answered"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.questions.MarkAnswered(ctx, in.ID, in.Answered); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

// --- answers ---

func (h *RPC) createAnswer(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID  int64 `json:"user_id"`
		Request struct {
			QuestionID int64  `json:"question_id"`
			Content    string `json:"content"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.answers.Create(ctx, in.UserID, in.Request.QuestionID, in.Request.Content)
}

func (h *RPC) getQuestionAnswers(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		QuestionID int64 `json:"question_id"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.answers.ForQuestion(ctx, in.QuestionID)
}

func (h *RPC) acceptAnswer(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		AnswerID int64 `json:"answer_id"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.answers.Accept(ctx, in.AnswerID); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

// --- votes ---

func (h *RPC) createVote(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID  int64 `json:"user_id"`
		Request struct {
			TargetID   int64  `json:"target_id"`
			TargetType string `json:"target_type"`
			VoteType   string `json:"vote_type"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	target := model.TargetRef{Type: model.TargetType(in.Request.TargetType), ID: in.Request.TargetID}
	return h.votes.Cast(ctx, in.UserID, target, model.VoteType(in.Request.VoteType))
}

func (h *RPC) getVoteCount(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		TargetID   int64  `json:"target_id"`
		TargetType string `json:"target_type"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.votes.Count(ctx, model.TargetRef{Type: model.TargetType(in.TargetType), ID: in.TargetID})
}

func (h *RPC) getUserVote(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID     int64  `json:"user_id"`
		TargetID   int64  `json:"target_id"`
		TargetType string `json:"target_type"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.votes.UserVote(ctx, in.UserID, model.TargetRef{Type: model.TargetType(in.TargetType), ID: in.TargetID})
}

// --- tags ---

func (h *RPC) createTag(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		Request struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.tags.Create(ctx, in.Request.Name, in.Request.Description)
}

func (h *RPC) getTag(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		ID int64 `json:"id"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.tags.Get(ctx, in.ID)
}

func (h *RPC) listTags(ctx context.Context, _ json.RawMessage) (any, error) {
	return h.tags.List(ctx)
}

func (h *RPC) searchTags(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		Query string `json:"query"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.tags.Search(ctx, in.Query)
}

// --- comments ---

func (h *RPC) createComment(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID  int64 `json:"user_id"`
		Request struct {
			TargetID   int64  `json:"target_id"`
			TargetType string `json:"target_type"`
			Content    string `json:"content"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	target := model.TargetRef{Type: model.TargetType(in.Request.TargetType), ID: in.Request.TargetID}
	return h.comments.Create(ctx, in.UserID, target, in.Request.Content)
}

func (h *RPC) getComments(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		TargetID   int64  `json:"target_id"`
		TargetType string `json:"target_type"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.comments.ForTarget(ctx, model.TargetRef{Type: model.TargetType(in.TargetType), ID: in.TargetID})
}

func (h *RPC) updateComment(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		CommentID int64 `json:"comment_id"`
		UserID    int64 `json:"user_id"`
		Request   struct {
			Content string `json:"content"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.comments.Update(ctx, in.CommentID, in.UserID, in.Request.Content)
}

func (h *RPC) deleteComment(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		CommentID int64 `json:"comment_id"`
		UserID    int64 `json:"user_id"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.comments.Delete(ctx, in.CommentID, in.UserID); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

// --- bookmarks ---

func (h *RPC) createBookmark(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID  int64 `json:"user_id"`
		Request struct {
			TargetID   int64  `json:"target_id"`
			TargetType string `json:"target_type"`
			Title      string `json:"title"`
			Note       string `json:"note"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	target := model.TargetRef{Type: model.TargetType(in.Request.TargetType), ID: in.Request.TargetID}
	return h.bookmarks.Create(ctx, in.UserID, target, in.Request.Title, in.Request.Note)
}

func (h *RPC) listBookmarks(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		UserID int64 `json:"user_id"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.bookmarks.ForUser(ctx, in.UserID)
}

func (h *RPC) getBookmark(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		BookmarkID int64 `json:"bookmark_id"`
		UserID     int64 `json:"user_id"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.bookmarks.Get(ctx, in.BookmarkID, in.UserID)
}

func (h *RPC) updateBookmark(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		BookmarkID int64 `json:"bookmark_id"`
		UserID     int64 `json:"user_id"`
		Request    struct {
			Title string `json:"title"`
			Note  string `json:"note"`
		} `json:"request"`
	}](args)
	if err != nil {
		return nil, err
	}
	return h.bookmarks.Update(ctx, in.BookmarkID, in.UserID, in.Request.Title, in.Request.Note)
}

func (h *RPC) deleteBookmark(ctx context.Context, args json.RawMessage) (any, error) {
	in, err := decode[struct {
		BookmarkID int64 `json:"bookmark_id"`
		UserID     int64 `json:"user_id"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.bookmarks.Delete(ctx, in.BookmarkID, in.UserID); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

// --- preferences ---

func (h *RPC) getPrefs(ctx context.Context, _ json.RawMessage) (any, error) {
	ident := h.sessions.Current()
	if ident.IsZero() {
		return nil, apperror.AuthFailed("no active session")
	}
	return h.prefs.Get(ctx, ident.OwnerKey())
}

func (h *RPC) setSidebar(ctx context.Context, args json.RawMessage) (any, error) {
	ident := h.sessions.Current()
	if ident.IsZero() {
		return nil, apperror.AuthFailed("no active session")
	}
	in, err := decode[struct {
		Open bool `json:"open"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.prefs.SetSidebar(ctx, ident.OwnerKey(), in.Open); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (h *RPC) recordSearch(ctx context.Context, args json.RawMessage) (any, error) {
	ident := h.sessions.Current()
	if ident.IsZero() {
		return nil, apperror.AuthFailed("no active session")
	}
	in, err := decode[struct {
		Term string `json:"term"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.prefs.RecordSearch(ctx, ident.OwnerKey(), in.Term); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (h *RPC) recordView(ctx context.Context, args json.RawMessage) (any, error) {
	ident := h.sessions.Current()
	if ident.IsZero() {
		return nil, apperror.AuthFailed("no active session")
	}
	in, err := decode[struct {
		QuestionID int64 `json:"question_id"`
	}](args)
	if err != nil {
		return nil, err
	}
	if err := h.prefs.RecordView(ctx, ident.OwnerKey(), in.QuestionID); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}
