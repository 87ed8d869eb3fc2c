package librarycore

import (
	"errors"
	"sync"
	"testing"

	"github.com/hmans/shelf/internal/library"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func setupTestCore(t *testing.T) *Core {
	t.Helper()
	core := New(library.DefaultSeed())
	t.Cleanup(func() { core.Close() })
	return core
}

func TestNewEmpty(t *testing.T) {
	core := New(nil)

	if got := core.BookCount(); got != 0 {
		t.Errorf("BookCount() = %d, want 0", got)
	}
	if got := core.Authors(); got == nil || len(got) != 0 {
		t.Errorf("Authors() = %v, want empty non-nil slice", got)
	}
}

func TestSeededCore(t *testing.T) {
	core := setupTestCore(t)

	if got := core.BookCount(); got != 7 {
		t.Errorf("BookCount() = %d, want 7", got)
	}
	if got := core.AuthorCount(); got != 5 {
		t.Errorf("AuthorCount() = %d, want 5", got)
	}

	books := core.Books()
	first, last := library.Text(books[0].Title), library.Text(books[6].Title)
	if first != "Clean Code" || last != "The Demon " {
		t.Errorf("Books() not in seed order: first=%q last=%q", first, last)
	}
}

func TestBooksReturnsCopy(t *testing.T) {
	core := setupTestCore(t)

	books := core.Books()
	books[0] = nil

	if core.Books()[0] == nil {
		t.Error("modifying Books() result changed the store")
	}
}

func TestCountBooksBy(t *testing.T) {
	core := setupTestCore(t)

	tests := []struct {
		name string
		want int
	}{
		{"Robert Martin", 2},
		{"Fyodor Dostoevsky", 2},
		{"Martin Fowler", 1},
		{"Nobody", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := core.CountBooksBy(strPtr(tt.name)); got != tt.want {
			t.Errorf("CountBooksBy(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestAddBook(t *testing.T) {
	t.Run("known author", func(t *testing.T) {
		core := setupTestCore(t)

		b := core.AddBook(&library.Book{Title: strPtr("T2"), Author: strPtr("Robert Martin")})
		if b.ID == "" {
			t.Error("AddBook() did not assign an ID")
		}
		if got := core.AuthorCount(); got != 5 {
			t.Errorf("AuthorCount() = %d, want 5", got)
		}
		if got := core.CountBooksBy(strPtr("Robert Martin")); got != 3 {
			t.Errorf("CountBooksBy() = %d, want 3", got)
		}
		books := core.Books()
		if books[len(books)-1] != b {
			t.Error("new book is not last")
		}
	})

	t.Run("new author", func(t *testing.T) {
		core := setupTestCore(t)

		core.AddBook(&library.Book{Title: strPtr("T"), Author: strPtr("New Person")})

		authors := core.Authors()
		if len(authors) != 6 {
			t.Fatalf("AuthorCount() = %d, want 6", len(authors))
		}
		a := authors[5]
		if library.Text(a.Name) != "New Person" {
			t.Errorf("new author Name = %q", library.Text(a.Name))
		}
		if a.Born != nil {
			t.Errorf("new author Born = %d, want nil", *a.Born)
		}
		if a.ID == "" {
			t.Error("new author has no ID")
		}
		if got := core.CountBooksBy(strPtr("New Person")); got != 1 {
			t.Errorf("CountBooksBy() = %d, want 1", got)
		}
	})

	t.Run("second book by new author", func(t *testing.T) {
		core := setupTestCore(t)

		core.AddBook(&library.Book{Title: strPtr("One"), Author: strPtr("Newcomer")})
		core.AddBook(&library.Book{Title: strPtr("Two"), Author: strPtr("Newcomer")})

		if got := core.AuthorCount(); got != 6 {
			t.Errorf("AuthorCount() = %d, want 6", got)
		}
	})

	t.Run("null author name", func(t *testing.T) {
		core := setupTestCore(t)

		core.AddBook(&library.Book{Title: strPtr("Anonymous")})
		core.AddBook(&library.Book{Title: strPtr("Also anonymous")})

		authors := core.Authors()
		if len(authors) != 6 {
			t.Fatalf("AuthorCount() = %d, want 6", len(authors))
		}
		if authors[5].Name != nil {
			t.Errorf("new author Name = %q, want nil", *authors[5].Name)
		}
		if got := core.CountBooksBy(nil); got != 2 {
			t.Errorf("CountBooksBy(nil) = %d, want 2", got)
		}
	})

	t.Run("empty and null author names are distinct", func(t *testing.T) {
		core := setupTestCore(t)

		core.AddBook(&library.Book{Title: strPtr("Anonymous")})
		core.AddBook(&library.Book{Title: strPtr("Blank"), Author: strPtr("")})

		if got := core.AuthorCount(); got != 7 {
			t.Errorf("AuthorCount() = %d, want 7", got)
		}
		if got := core.CountBooksBy(strPtr("")); got != 1 {
			t.Errorf("CountBooksBy(\"\") = %d, want 1", got)
		}
	})
}

func TestEditAuthor(t *testing.T) {
	t.Run("existing author", func(t *testing.T) {
		core := setupTestCore(t)
		before, _ := core.AuthorByName("Martin Fowler")

		got, err := core.EditAuthor(strPtr("Martin Fowler"), intPtr(1955))
		if err != nil {
			t.Fatalf("EditAuthor() error = %v", err)
		}
		if got.Born == nil || *got.Born != 1955 {
			t.Errorf("EditAuthor().Born = %v, want 1955", got.Born)
		}
		if got.ID != before.ID || got.Name != before.Name {
			t.Errorf("EditAuthor() changed other fields: %+v", got)
		}

		authors := core.Authors()
		if authors[1] != got {
			t.Error("updated author not at original position")
		}
		if *before.Born != 1963 {
			t.Error("previous record was mutated in place")
		}
	})

	t.Run("clear birth year", func(t *testing.T) {
		core := setupTestCore(t)

		got, err := core.EditAuthor(strPtr("Robert Martin"), nil)
		if err != nil {
			t.Fatalf("EditAuthor() error = %v", err)
		}
		if got.Born != nil {
			t.Errorf("Born = %d, want nil", *got.Born)
		}
	})

	t.Run("null name", func(t *testing.T) {
		core := setupTestCore(t)

		if _, err := core.EditAuthor(nil, intPtr(1900)); !errors.Is(err, ErrAuthorNotFound) {
			t.Fatalf("EditAuthor(nil) error = %v, want ErrAuthorNotFound", err)
		}

		core.AddBook(&library.Book{Title: strPtr("Anonymous")})
		got, err := core.EditAuthor(nil, intPtr(1900))
		if err != nil {
			t.Fatalf("EditAuthor(nil) error = %v", err)
		}
		if got.Name != nil || got.Born == nil || *got.Born != 1900 {
			t.Errorf("EditAuthor(nil) = %+v, want the nameless author born 1900", got)
		}
	})

	t.Run("unknown author", func(t *testing.T) {
		core := setupTestCore(t)
		before := core.Authors()

		got, err := core.EditAuthor(strPtr("Nonexistent"), intPtr(1900))
		if !errors.Is(err, ErrAuthorNotFound) {
			t.Errorf("EditAuthor() error = %v, want ErrAuthorNotFound", err)
		}
		if err != nil && err.Error() != `author not found: "Nonexistent"` {
			t.Errorf("EditAuthor() error = %q", err.Error())
		}
		if got != nil {
			t.Errorf("EditAuthor() = %+v, want nil", got)
		}

		after := core.Authors()
		if len(after) != len(before) {
			t.Errorf("AuthorCount changed from %d to %d", len(before), len(after))
		}
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("author %d changed", i)
			}
		}
	})
}

func TestAuthorByName(t *testing.T) {
	core := setupTestCore(t)

	a, err := core.AuthorByName("Sandi Metz")
	if err != nil {
		t.Fatalf("AuthorByName() error = %v", err)
	}
	if a.ID != "afa5b6f3-344d-11e9-a414-719c6709cf3e" {
		t.Errorf("AuthorByName().ID = %q", a.ID)
	}

	if _, err := core.AuthorByName("sandi metz"); !errors.Is(err, ErrAuthorNotFound) {
		t.Errorf("AuthorByName() is case sensitive, got error %v", err)
	}
}

func TestLoadReplacesContents(t *testing.T) {
	core := setupTestCore(t)
	core.AddBook(&library.Book{Title: strPtr("Extra"), Author: strPtr("Someone")})

	core.Load(&library.Seed{
		Authors: []*library.Author{{ID: "a", Name: strPtr("Only")}},
	})

	if got := core.AuthorCount(); got != 1 {
		t.Errorf("AuthorCount() = %d, want 1", got)
	}
	if got := core.BookCount(); got != 0 {
		t.Errorf("BookCount() = %d, want 0", got)
	}
	if _, err := core.AuthorByName("Someone"); !errors.Is(err, ErrAuthorNotFound) {
		t.Error("author index not reset by Load")
	}
}

func TestSearchBooks(t *testing.T) {
	core := setupTestCore(t)

	got, err := core.SearchBooks("refactoring", 0)
	if err != nil {
		t.Fatalf("SearchBooks() error = %v", err)
	}
	if len(got) != 4 {
		t.Errorf("SearchBooks(refactoring) returned %d books, want 4", len(got))
	}

	// Books added after the index exists are searchable
	core.AddBook(&library.Book{Title: strPtr("Domain-Driven Design"), Author: strPtr("Eric Evans")})
	got, err = core.SearchBooks("domain", 0)
	if err != nil {
		t.Fatalf("SearchBooks() error = %v", err)
	}
	if len(got) != 1 || library.Text(got[0].Author) != "Eric Evans" {
		t.Errorf("SearchBooks(domain) = %v, want the new book", got)
	}

	// Load drops the index; the next search rebuilds it
	core.Load(library.DefaultSeed())
	got, err = core.SearchBooks("domain", 0)
	if err != nil {
		t.Fatalf("SearchBooks() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SearchBooks(domain) after Load = %v, want none", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	core := setupTestCore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			core.AddBook(&library.Book{Title: strPtr("Concurrent"), Author: strPtr("Robert Martin")})
		}()
		go func() {
			defer wg.Done()
			_ = core.Books()
			_ = core.CountBooksBy(strPtr("Robert Martin"))
		}()
	}
	wg.Wait()

	if got := core.CountBooksBy(strPtr("Robert Martin")); got != 22 {
		t.Errorf("CountBooksBy() = %d, want 22", got)
	}
}
