package models

import (
	"fmt"
	"strconv"
	"strings"
)

// NoPermission replaces the body of an article the reader may not view.
const NoPermission = "No Permission"

// Article is stored with Body already transformed when Encrypted is set.
type Article struct {
	ID         int64  `json:"id"`
	Title      string `json:"title" validate:"notblank"`
	Authors    string `json:"authors"`
	Abstract   string `json:"abstract"`
	Keywords   string `json:"keywords"`
	Body       string `json:"body"`
	References string `json:"references"`
	Encrypted  bool   `json:"encrypted"`
}

// Scope is the access-rights key of the article.
func (a *Article) Scope() string {
	return ArticleScope(a.ID)
}

// ArticleScope returns "article-{id}".
func ArticleScope(id int64) string {
	return "article-" + strconv.FormatInt(id, 10)
}

// DefaultRights are the rights recorded for a new article: encrypted
// articles are admin-only, plain ones are viewable.
func DefaultRights(encrypted bool) Rights {
	if encrypted {
		return Rights{CanView: false, CanAdmin: true}
	}
	return Rights{CanView: true, CanAdmin: false}
}

// Details renders the full article.
func (a *Article) Details() string {
	return fmt.Sprintf("ID: %d\nTitle: %s\nAuthors: %s\nAbstract: %s\nKeywords: %s\nBody: %s\nReferences: %s",
		a.ID, a.Title, a.Authors, a.Abstract, a.Keywords, a.Body, a.References)
}

// ArticleSummary is a list row. DisplayID is the 1-based position in id order.
type ArticleSummary struct {
	DisplayID int
	ID        int64
	Title     string
	Authors   string
	Abstract  string
}

func (s ArticleSummary) String() string {
	return fmt.Sprintf("%d. %s by %s", s.DisplayID, s.Title, s.Authors)
}

// SearchResult is a matched article with its 1-based sequence in the result.
type SearchResult struct {
	Seq     int
	Article Article
}

func (r SearchResult) String() string {
	return fmt.Sprintf("Seq: %d, Title: %s, Authors: %s, Abstract: %s",
		r.Seq, r.Article.Title, r.Article.Authors, r.Article.Abstract)
}

// SearchQuery filters articles. Level and Group accept "All" to disable
// their filter; Group may be a group name or id.
type SearchQuery struct {
	Text      string
	Level     string
	Group     string
	Requester string
}

// FilterAll disables a search filter.
const FilterAll = "All"

// IsAll reports whether v disables a filter.
func IsAll(v string) bool {
	return v == "" || strings.EqualFold(v, FilterAll)
}

// LevelStats counts articles per difficulty keyword.
type LevelStats struct {
	Beginner     int
	Intermediate int
	Advanced     int
	Expert       int
}

func (s LevelStats) String() string {
	return fmt.Sprintf("Beginner: %d, Intermediate: %d, Advanced: %d, Expert: %d",
		s.Beginner, s.Intermediate, s.Advanced, s.Expert)
}

// LevelStatistics counts, case-insensitively, the articles whose keywords
// mention each level. An article may count for several levels.
func LevelStatistics(articles []Article) LevelStats {
	var s LevelStats
	for _, a := range articles {
		k := strings.ToLower(a.Keywords)
		if strings.Contains(k, "beginner") {
			s.Beginner++
		}
		if strings.Contains(k, "intermediate") {
			s.Intermediate++
		}
		if strings.Contains(k, "advanced") {
			s.Advanced++
		}
		if strings.Contains(k, "expert") {
			s.Expert++
		}
	}
	return s
}

// GroupArticle is an article as seen by one member of a group.
type GroupArticle struct {
	Article
	GroupID string
}
