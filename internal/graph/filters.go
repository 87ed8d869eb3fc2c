package graph

import (
	"github.com/samber/lo"

	"github.com/hmans/shelf/internal/library"
)

// BookFilter narrows the allBooks query. Nil or empty fields don't filter.
type BookFilter struct {
	Author *string
	Genre  *string
}

// ApplyFilter applies BookFilter to a slice of books and returns filtered results.
// Both conditions must hold when both are set. Order is preserved.
func ApplyFilter(books []*library.Book, filter *BookFilter) []*library.Book {
	if filter == nil {
		return books
	}

	result := books

	if filter.Author != nil && *filter.Author != "" {
		result = filterByAuthor(result, *filter.Author)
	}
	if filter.Genre != nil && *filter.Genre != "" {
		result = filterByGenre(result, *filter.Genre)
	}

	return result
}

// filterByAuthor keeps books whose author name matches exactly.
func filterByAuthor(books []*library.Book, author string) []*library.Book {
	return lo.Filter(books, func(b *library.Book, _ int) bool {
		return b.Author != nil && *b.Author == author
	})
}

// filterByGenre keeps books tagged with genre.
func filterByGenre(books []*library.Book, genre string) []*library.Book {
	return lo.Filter(books, func(b *library.Book, _ int) bool {
		return b.HasGenre(genre)
	})
}
