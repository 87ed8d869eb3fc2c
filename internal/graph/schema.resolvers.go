package graph

import (
	"context"

	"github.com/hmans/shelf/internal/library"
	"github.com/hmans/shelf/internal/log"
	"github.com/hmans/shelf/internal/search"
)

// BookCount is the resolver for the bookCount field.
func (r *authorResolver) BookCount(ctx context.Context, obj *library.Author) (*int, error) {
	count := r.Core.CountBooksBy(obj.Name)
	return &count, nil
}

// AddBook is the resolver for the addBook field.
func (r *mutationResolver) AddBook(ctx context.Context, title *string, author *string, published *int, genres []*string) (*library.Book, error) {
	b := r.Core.AddBook(&library.Book{
		Title:     title,
		Author:    author,
		Published: published,
		Genres:    genres,
	})
	log.FromContext(ctx).V(1).Info("added book", "id", b.ID, "title", library.Text(b.Title), "author", library.Text(b.Author))

	return b, nil
}

// EditAuthor is the resolver for the editAuthor field.
func (r *mutationResolver) EditAuthor(ctx context.Context, name *string, setBornTo *int) (*library.Author, error) {
	a, err := r.Core.EditAuthor(name, setBornTo)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).V(1).Info("edited author", "id", a.ID, "name", library.Text(a.Name))
	return a, nil
}

// AllBooks is the resolver for the allBooks field.
func (r *queryResolver) AllBooks(ctx context.Context, author *string, genre *string) ([]*library.Book, error) {
	return ApplyFilter(r.Core.Books(), &BookFilter{Author: author, Genre: genre}), nil
}

// BookCount is the resolver for the bookCount field.
// authorName is required by the schema but does not narrow the count.
func (r *queryResolver) BookCount(ctx context.Context, authorName string) (int, error) {
	return r.Core.BookCount(), nil
}

// AllAuthors is the resolver for the allAuthors field.
func (r *queryResolver) AllAuthors(ctx context.Context) ([]*library.Author, error) {
	return r.Core.Authors(), nil
}

// AuthorCount is the resolver for the authorCount field.
func (r *queryResolver) AuthorCount(ctx context.Context) (int, error) {
	return r.Core.AuthorCount(), nil
}

// SearchBooks is the resolver for the searchBooks field.
func (r *queryResolver) SearchBooks(ctx context.Context, text string) ([]*library.Book, error) {
	return r.Core.SearchBooks(text, search.DefaultSearchLimit)
}

// Author returns AuthorResolver implementation.
func (r *Resolver) Author() AuthorResolver { return &authorResolver{r} }

// Mutation returns MutationResolver implementation.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

type authorResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
