package service

import (
	"context"
	"sort"
	"strings"

	"github.com/queueoverflow/queueoverflow/internal/model"
)

// Sort orders recognized by List.
const (
	SortNewest    = "newest"
	SortViews     = "views"
	SortVotes     = "votes"
	SortRelevance = "relevance"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Query configures a question listing. Zero values mean "no constraint":
// empty filters pass everything, page defaults to 1, per_page to 20.
type Query struct {
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	SortBy  string  `json:"sort_by"`
	TagIDs  []int64 `json:"tag_ids"`
	UserIDs []int64 `json:"user_ids"`
	Search  string  `json:"search"`
}

// List answers a listing query: filter, sort, paginate. A pure read — view
// counts do not move. A page past the end of the result set is an empty
// slice, not an error.
func (s *QuestionService) List(ctx context.Context, query Query) ([]model.QuestionView, error) {
	questions, err := s.data.Questions.All(ctx)
	if err != nil {
		return nil, err
	}
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

	tagNames, err := s.tagNamesByID(ctx, query.TagIDs)
	if err != nil {
		return nil, err
	}

	views := make([]model.QuestionView, 0, len(questions))
	for _, q := range questions {
		if !matchesQuery(q, query, tagNames) {
			continue
		}
		views = append(views, questionView(q, answers, votes, users))
	}

	sortViews(views, query)
	return paginate(views, query.Page, query.PerPage), nil
}

// tagNamesByID resolves the tag-id filter to names, since questions carry
// tag names. Unknown ids resolve to nothing and so match nothing.
func (s *QuestionService) tagNamesByID(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tags, err := s.data.Tags.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		for _, t := range tags {
			if t.ID == id {
				names = append(names, t.Name)
				break
			}
		}
	}
	return names, nil
}

// matchesQuery applies the three filters: tags, owners, search. A question
// passes when every supplied filter matches; absent filters always match.
func matchesQuery(q model.Question, query Query, tagNames []string) bool {
	if len(query.TagIDs) > 0 {
		any := false
		for _, name := range tagNames {
			for _, t := range q.Tags {
				if strings.EqualFold(t, name) {
					any = true
					break
				}
			}
		}
		if !any {
			return false
		}
	}

	if len(query.UserIDs) > 0 {
		any := false
		for _, id := range query.UserIDs {
			if q.UserID == id {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		lower := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(q.Title), lower) &&
			!strings.Contains(strings.ToLower(q.Content), lower) {
			return false
		}
	}

	return true
}

func sortViews(views []model.QuestionView, query Query) {
	switch query.SortBy {
	case SortViews:
		sort.SliceStable(views, func(i, j int) bool {
			if views[i].ViewCount != views[j].ViewCount {
				return views[i].ViewCount > views[j].ViewCount
			}
			return views[i].CreatedAt.After(views[j].CreatedAt)
		})
	case SortVotes:
		sort.SliceStable(views, func(i, j int) bool {
			if views[i].VoteCount != views[j].VoteCount {
				return views[i].VoteCount > views[j].VoteCount
			}
			return views[i].CreatedAt.After(views[j].CreatedAt)
		})
	case SortRelevance:
		terms := searchTerms(query.Search)
		sort.SliceStable(views, func(i, j int) bool {
			si, sj := relevanceScore(views[i].Question, terms), relevanceScore(views[j].Question, terms)
			if si != sj {
				return si > sj
			}
			return views[i].CreatedAt.After(views[j].CreatedAt)
		})
	default: // newest
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].CreatedAt.After(views[j].CreatedAt)
		})
	}
}

func searchTerms(search string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(search)))
}

// relevanceScore ranks a question against the search terms: each term found
// in the title counts double what a content match counts. Only meaningful
// when a search is set; with no terms every score is zero and the tiebreak
// (newest first) decides.
func relevanceScore(q model.Question, terms []string) int {
	if len(terms) == 0 {
		return 0
	}
	title := strings.ToLower(q.Title)
	content := strings.ToLower(q.Content)

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += 2
		}
		if strings.Contains(content, term) {
			score++
		}
	}
	return score
}

// paginate slices out the requested 1-indexed page. per_page is clamped to
// 1..100 and defaults to 20.
func paginate(views []model.QuestionView, page, perPage int) []model.QuestionView {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	start := (page - 1) * perPage
	if start >= len(views) {
		return []model.QuestionView{}
	}
	end := start + perPage
	if end > len(views) {
		end = len(views)
	}
	return views[start:end]
}
