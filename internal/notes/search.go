// ABOUTME: Search and favourite filtering over an owner's notes.
// ABOUTME: Matches are literal and case-insensitive; results carry <mark> highlights.

package notes

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/models"
)

// SearchResult is the outcome of a search. When Highlighted is set, each
// note's Title and Description are escaped HTML containing <mark> tags.
// Matches holds the same notes, in the same order, with their stored text.
type SearchResult struct {
	Query       string
	Notes       []*models.Note
	Matches     []*models.Note
	Highlighted bool
	NoResults   bool
	Message     string
}

// Search returns the owner's notes whose title or description contains
// query, ignoring case. An empty query returns every note unfiltered.
func (s *Service) Search(ctx context.Context, owner auth.Identity, query string) (*SearchResult, error) {
	all, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	// Invalid UTF-8 cannot be compiled into a pattern.
	query = strings.ToValidUTF8(strings.TrimSpace(query), "\uFFFD")
	if query == "" {
		return &SearchResult{Notes: all, Matches: all}, nil
	}

	re := matcher(query)
	res := &SearchResult{Query: query, Highlighted: true, Notes: []*models.Note{}, Matches: []*models.Note{}}
	for _, n := range all {
		if !re.MatchString(n.Title) && !re.MatchString(n.Description) {
			continue
		}
		res.Matches = append(res.Matches, n)
		c := n.Clone()
		c.Title = Highlight(n.Title, re)
		c.Description = Highlight(n.Description, re)
		res.Notes = append(res.Notes, c)
	}

	if len(res.Notes) == 0 {
		res.NoResults = true
		res.Message = fmt.Sprintf("No notes found for \"%s\".", query)
	}
	return res, nil
}

func matcher(query string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(query))
}

// Highlight escapes text for HTML and wraps every match of re in <mark>,
// keeping the casing of the original text.
func Highlight(text string, re *regexp.Regexp) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
		b.WriteString("</mark>")
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

// Mode selects which notes FavouriteList returns.
type Mode int

const (
	ModeFavourites Mode = iota
	ModeAll
)

// ParseMode maps "all" to ModeAll and anything else to ModeFavourites.
func ParseMode(s string) Mode {
	if s == "all" {
		return ModeAll
	}
	return ModeFavourites
}

func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "favourites"
}

// FavouriteList returns either the owner's favourite notes or all of them.
func (s *Service) FavouriteList(ctx context.Context, owner auth.Identity, mode Mode) ([]*models.Note, error) {
	if mode == ModeAll {
		return s.List(ctx, owner)
	}
	uid, err := ownerID(owner)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.ListFavourites(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	return notes, nil
}
