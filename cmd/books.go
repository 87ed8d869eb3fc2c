package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hmans/shelf/internal/graph"
	"github.com/hmans/shelf/internal/library"
	"github.com/hmans/shelf/internal/ui"
)

var (
	booksAuthor string
	booksGenre  string
	booksJSON   bool
)

var booksCmd = &cobra.Command{
	Use:     "books",
	Aliases: []string{"ls"},
	Short:   "List books",
	Long:    `Lists the books in the store, optionally filtered by author and genre.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		books := graph.ApplyFilter(core.Books(), &graph.BookFilter{
			Author: &booksAuthor,
			Genre:  &booksGenre,
		})

		if booksJSON {
			return writeJSON(cmd.OutOrStdout(), books)
		}

		renderBooks(cmd.OutOrStdout(), books)
		return nil
	},
}

// renderBooks writes books as a table with one row per book.
func renderBooks(w io.Writer, books []*library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("No books found."))
		return
	}

	maxTitleWidth := 5 // "TITLE"
	maxAuthorWidth := 6
	for _, b := range books {
		maxTitleWidth = max(maxTitleWidth, lipgloss.Width(ui.Truncate(library.Text(b.Title), 50)))
		maxAuthorWidth = max(maxAuthorWidth, lipgloss.Width(library.Text(b.Author)))
	}
	maxTitleWidth += 2
	maxAuthorWidth += 2

	titleStyle := lipgloss.NewStyle().Width(maxTitleWidth)
	authorStyle := lipgloss.NewStyle().Width(maxAuthorWidth)
	yearStyle := lipgloss.NewStyle().Width(6)
	genresStyle := lipgloss.NewStyle()

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(ui.HeaderCol.Render("TITLE")),
		authorStyle.Render(ui.HeaderCol.Render("AUTHOR")),
		yearStyle.Render(ui.HeaderCol.Render("YEAR")),
		genresStyle.Render(ui.HeaderCol.Render("GENRES")),
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, ui.Muted.Render(strings.Repeat("─", maxTitleWidth+maxAuthorWidth+6+30)))

	for _, b := range books {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			titleStyle.Render(ui.Title.Render(ui.Truncate(library.Text(b.Title), 50))),
			authorStyle.Render(ui.Author.Render(library.Text(b.Author))),
			yearStyle.Render(ui.RenderYear(b.Published)),
			genresStyle.Render(ui.RenderGenres(b.GenreNames(), cfg.GenreColor)),
		)
		fmt.Fprintln(w, row)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	booksCmd.Flags().StringVarP(&booksAuthor, "author", "a", "", "Only books by this author (exact name)")
	booksCmd.Flags().StringVarP(&booksGenre, "genre", "g", "", "Only books in this genre")
	booksCmd.Flags().BoolVar(&booksJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(booksCmd)
}
