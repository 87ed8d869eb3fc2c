// Package search provides full-text search over books using Bleve.
package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/hmans/shelf/internal/library"
)

// Index wraps a Bleve in-memory index for searching books.
type Index struct {
	index bleve.Index
}

// bookDocument is the structure stored in the Bleve index.
type bookDocument struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Genres []string `json:"genres"`
}

// NewIndex creates a new in-memory Bleve index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}

	return &Index{index: idx}, nil
}

// buildIndexMapping creates the Bleve index mapping for book documents.
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = "standard"

	// ID is stored but not analyzed
	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	bookMapping := bleve.NewDocumentMapping()
	bookMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	bookMapping.AddFieldMappingsAt("title", textFieldMapping)
	bookMapping.AddFieldMappingsAt("author", textFieldMapping)
	bookMapping.AddFieldMappingsAt("genres", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = bookMapping
	indexMapping.DefaultAnalyzer = "standard"
	indexMapping.IndexDynamic = false
	indexMapping.StoreDynamic = false
	indexMapping.ScoringModel = "bm25"

	return indexMapping
}

// Close closes the index.
func (idx *Index) Close() error {
	return idx.index.Close()
}

func toDocument(b *library.Book) bookDocument {
	return bookDocument{
		ID:     b.ID,
		Title:  library.Text(b.Title),
		Author: library.Text(b.Author),
		Genres: b.GenreNames(),
	}
}

// IndexBook adds or updates a book in the search index.
func (idx *Index) IndexBook(b *library.Book) error {
	return idx.index.Index(b.ID, toDocument(b))
}

// IndexBooks indexes multiple books in a single batch.
func (idx *Index) IndexBooks(books []*library.Book) error {
	batch := idx.index.NewBatch()
	for _, b := range books {
		if err := batch.Index(b.ID, toDocument(b)); err != nil {
			return err
		}
	}
	return idx.index.Batch(batch)
}

// DefaultSearchLimit is the default maximum number of search results.
const DefaultSearchLimit = 1000

// Search executes a query and returns the IDs of matching books, most
// relevant first. The limit parameter caps the number of results
// (0 uses DefaultSearchLimit).
//
// The query string syntax supports plain terms ("refactoring"), boolean
// operators ("agile AND design"), wildcards ("refact*"), phrases and
// field-specific terms ("author:fowler", "genres:classic").
func (idx *Index) Search(queryStr string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := bleve.NewQueryStringQuery(queryStr)

	searchRequest := bleve.NewSearchRequest(query)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"id"}

	result, err := idx.index.Search(searchRequest)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}

	return ids, nil
}
