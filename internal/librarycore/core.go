// Package librarycore provides a thread-safe in-memory store for authors and
// books, seeded at startup and optionally reloaded when its seed file changes.
package librarycore

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/hmans/shelf/internal/library"
	"github.com/hmans/shelf/internal/search"
)

var ErrAuthorNotFound = errors.New("author not found")

// Core provides thread-safe in-memory storage for authors and books.
//
// Both collections keep insertion order. Authors are additionally indexed by
// name (first occurrence wins) and books by ID.
type Core struct {
	mu        sync.RWMutex
	authors   []*library.Author
	authorPos map[nameKey]int // name -> position in authors
	books     []*library.Book
	bookPos   map[string]int // ID -> position in books

	searchIndex *search.Index // built on first search
	logger      logr.Logger

	// Seed file watching (optional)
	seedPath string
	watching bool
	done     chan struct{}
	onReload func()
}

// nameKey identifies an author name in the index. A null name has its own
// key, distinct from the empty string.
type nameKey struct {
	name string
	null bool
}

func keyOf(name *string) nameKey {
	if name == nil {
		return nameKey{null: true}
	}
	return nameKey{name: *name}
}

// formatName renders an optional name for error messages.
func formatName(name *string) string {
	if name == nil {
		return "null"
	}
	return strconv.Quote(*name)
}

// New creates a Core holding the given seed data. A nil seed yields an empty
// store.
func New(seed *library.Seed) *Core {
	c := &Core{logger: logr.Discard()}
	c.replace(seed)
	return c
}

// SetLogger sets the logger used for reload and indexing messages.
func (c *Core) SetLogger(logger logr.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// Load replaces the entire store contents with seed.
func (c *Core) Load(seed *library.Seed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(seed)
}

// replace swaps in new contents (must be called with lock held or before the
// Core is shared).
func (c *Core) replace(seed *library.Seed) {
	c.authors = nil
	c.authorPos = make(map[nameKey]int)
	c.books = nil
	c.bookPos = make(map[string]int)

	if c.searchIndex != nil {
		if err := c.searchIndex.Close(); err != nil {
			c.logger.Error(err, "closing search index")
		}
		c.searchIndex = nil
	}

	if seed == nil {
		return
	}
	for _, a := range seed.Authors {
		c.appendAuthor(a)
	}
	for _, b := range seed.Books {
		c.appendBook(b)
	}
}

func (c *Core) appendAuthor(a *library.Author) {
	key := keyOf(a.Name)
	if _, exists := c.authorPos[key]; !exists {
		c.authorPos[key] = len(c.authors)
	}
	c.authors = append(c.authors, a)
}

func (c *Core) appendBook(b *library.Book) {
	c.bookPos[b.ID] = len(c.books)
	c.books = append(c.books, b)
}

// Books returns all books in insertion order.
func (c *Core) Books() []*library.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*library.Book, len(c.books))
	copy(result, c.books)
	return result
}

// Authors returns all authors in insertion order.
func (c *Core) Authors() []*library.Author {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*library.Author, len(c.authors))
	copy(result, c.authors)
	return result
}

// BookCount returns the number of books.
func (c *Core) BookCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

// AuthorCount returns the number of authors.
func (c *Core) AuthorCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.authors)
}

// CountBooksBy returns the number of books whose author is name. A nil name
// counts the books that have no author.
func (c *Core) CountBooksBy(name *string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return lo.CountBy(c.books, func(b *library.Book) bool {
		return library.SameName(b.Author, name)
	})
}

// AuthorByName returns the author with the given name.
func (c *Core) AuthorByName(name string) (*library.Author, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.authorPos[keyOf(&name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAuthorNotFound, name)
	}
	return c.authors[pos], nil
}

// AddBook stores a new book, assigning it a fresh ID. If no author with the
// book's author name exists yet, one is created with an unknown birth year.
// No validation is performed on the book's fields.
func (c *Core) AddBook(b *library.Book) *library.Book {
	c.mu.Lock()
	defer c.mu.Unlock()

	b.ID = library.NewID()

	if _, known := c.authorPos[keyOf(b.Author)]; !known {
		a := &library.Author{ID: library.NewID(), Name: b.Author}
		c.appendAuthor(a)
		c.logger.V(1).Info("created author", "name", formatName(a.Name), "id", a.ID)
	}

	c.appendBook(b)

	if c.searchIndex != nil {
		if err := c.searchIndex.IndexBook(b); err != nil {
			c.logger.Error(err, "indexing book", "id", b.ID)
		}
	}

	return b
}

// EditAuthor replaces the birth year of the author with the given name and
// returns the updated record. The record is replaced at the same position.
// Returns ErrAuthorNotFound if there is no such author; the store is left
// unchanged in that case.
func (c *Core) EditAuthor(name *string, born *int) (*library.Author, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.authorPos[keyOf(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAuthorNotFound, formatName(name))
	}

	updated := c.authors[pos].WithBorn(born)
	c.authors[pos] = updated
	return updated, nil
}

// SearchBooks returns the books matching a Bleve query string, most relevant
// first. The index is built on the first call.
func (c *Core) SearchBooks(query string, limit int) ([]*library.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.searchIndex == nil {
		idx, err := search.NewIndex()
		if err != nil {
			return nil, fmt.Errorf("creating search index: %w", err)
		}
		if err := idx.IndexBooks(c.books); err != nil {
			idx.Close()
			return nil, fmt.Errorf("indexing books: %w", err)
		}
		c.searchIndex = idx
	}

	ids, err := c.searchIndex.Search(query, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*library.Book, 0, len(ids))
	for _, id := range ids {
		if pos, ok := c.bookPos[id]; ok {
			result = append(result, c.books[pos])
		}
	}
	return result, nil
}

// Close stops any active watcher and releases the search index.
func (c *Core) Close() error {
	if err := c.Unwatch(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.searchIndex != nil {
		err := c.searchIndex.Close()
		c.searchIndex = nil
		return err
	}
	return nil
}
