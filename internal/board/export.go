package board

import (
	"strings"
	"unicode/utf16"
)

const (
	ExportFilename = "fridgeflow-notes.txt"

	exportDivider = "\n\n-------------------\n\n"
)

// ExportText renders every note as a title, an underline of dashes and
// the content, with a divider between notes.
func (b *Board) ExportText() string {
	return FormatNotes(b.Notes())
}

// FormatNotes sizes each underline in UTF-16 code units, so an emoji in a
// title gets two dashes.
func FormatNotes(notes []Note) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = n.Title + "\n" + strings.Repeat("-", len(utf16.Encode([]rune(n.Title)))) + "\n" + n.Content
	}
	return strings.Join(parts, exportDivider)
}
