package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hmans/shelf/internal/library"
	"github.com/hmans/shelf/internal/librarycore"
	"github.com/hmans/shelf/internal/ui"
)

var authorsJSON bool

// authorRow is an author together with its derived book count.
type authorRow struct {
	ID        string  `json:"id"`
	Name      *string `json:"name"`
	Born      *int    `json:"born"`
	BookCount int     `json:"bookCount"`
}

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List authors with their book counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := authorRows(core)

		if authorsJSON {
			return writeJSON(cmd.OutOrStdout(), rows)
		}

		renderAuthors(cmd.OutOrStdout(), rows)
		return nil
	},
}

func authorRows(c *librarycore.Core) []authorRow {
	authors := c.Authors()
	rows := make([]authorRow, len(authors))
	for i, a := range authors {
		rows[i] = authorRow{
			ID:        a.ID,
			Name:      a.Name,
			Born:      a.Born,
			BookCount: c.CountBooksBy(a.Name),
		}
	}
	return rows
}

func renderAuthors(w io.Writer, rows []authorRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("No authors found."))
		return
	}

	maxNameWidth := 4 // "NAME"
	for _, r := range rows {
		maxNameWidth = max(maxNameWidth, lipgloss.Width(library.Text(r.Name)))
	}
	maxNameWidth += 2

	nameStyle := lipgloss.NewStyle().Width(maxNameWidth)
	bornStyle := lipgloss.NewStyle().Width(6)
	countStyle := lipgloss.NewStyle()

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		nameStyle.Render(ui.HeaderCol.Render("NAME")),
		bornStyle.Render(ui.HeaderCol.Render("BORN")),
		countStyle.Render(ui.HeaderCol.Render("BOOKS")),
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, ui.Muted.Render(strings.Repeat("─", maxNameWidth+6+5)))

	for _, r := range rows {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(ui.Author.Render(library.Text(r.Name))),
			bornStyle.Render(ui.RenderYear(r.Born)),
			countStyle.Render(strconv.Itoa(r.BookCount)),
		)
		fmt.Fprintln(w, row)
	}
}

func init() {
	authorsCmd.Flags().BoolVar(&authorsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(authorsCmd)
}
