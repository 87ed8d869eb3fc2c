// Package library defines the author and book records served by shelf,
// along with the seed data the store starts from.
package library

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Book is a single title on the shelf.
//
// Author holds the author's name rather than an author ID. Books are joined
// to authors by that name. Title, Author and individual genres are kept
// exactly as given, so any of them may be null.
type Book struct {
	ID        string    `yaml:"id" json:"id"`
	Title     *string   `yaml:"title" json:"title"`
	Published *int      `yaml:"published,omitempty" json:"published"`
	Author    *string   `yaml:"author" json:"author"`
	Genres    []*string `yaml:"genres,omitempty" json:"genres"`
}

// HasGenre returns true if genre is one of the book's genres.
func (b *Book) HasGenre(genre string) bool {
	return lo.ContainsBy(b.Genres, func(g *string) bool {
		return g != nil && *g == genre
	})
}

// GenreNames returns the book's genres without null entries.
func (b *Book) GenreNames() []string {
	return lo.FilterMap(b.Genres, func(g *string, _ int) (string, bool) {
		if g == nil {
			return "", false
		}
		return *g, true
	})
}

// Text returns the string s points to, or "" for nil.
func Text(s *string) string {
	return lo.FromPtr(s)
}

// SameName reports whether two optional names are equal. A null name only
// equals another null name.
func SameName(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// NewID returns a fresh time-based (version 1) UUID string, the same format
// the seed data uses.
func NewID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		// No usable clock sequence or node; fall back to a random UUID.
		return uuid.NewString()
	}
	return id.String()
}
