package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/jot/internal/models"
)

// NotesTable renders notes as a two-column "Note | Modified Time" table sorted
// by relative path. Outer borders are left off; only the header rule and the
// column separator remain.
func NotesTable(notes []models.Note) string {
	sorted := make([]models.Note, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RelativePath < sorted[j].RelativePath
	})

	rows := make([][]string, len(sorted))
	for i, n := range sorted {
		rows[i] = []string{n.RelativePath, n.Modified}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(true).
		BorderStyle(Muted).
		Headers("Note", "Modified Time").
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Inherit(Heading)
			}
			return style
		}).
		Rows(rows...)

	return tbl.Render()
}
