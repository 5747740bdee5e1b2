// ABOUTME: Terminal formatting for notely CLI output.
// ABOUTME: Uses glamour for markdown descriptions and fatih/color for styling.

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/harper/notely/internal/models"
	"github.com/harper/notely/internal/notes"
)

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

const timeLayout = "2006-01-02 15:04"

func star(n *models.Note) string {
	if n.IsFavourite {
		return yellow("★")
	}
	return " "
}

func FormatNoteListItem(note *models.Note) string {
	var sb strings.Builder

	idPrefix := note.ID.String()[:6]
	sb.WriteString(fmt.Sprintf("  %s %s  %s\n", star(note), faint(idPrefix), bold(note.Title)))
	sb.WriteString(fmt.Sprintf("           %s %s\n",
		faint("Updated:"),
		faint(note.UpdatedAt.Format(timeLayout))))

	return sb.String()
}

func FormatNoteList(list []*models.Note) string {
	var sb strings.Builder
	for _, n := range list {
		sb.WriteString(FormatNoteListItem(n))
	}
	return sb.String()
}

// FormatSearchResult lists matches with their stored text, or the
// no-results message.
func FormatSearchResult(res *notes.SearchResult) string {
	if res.NoResults {
		return faint(res.Message) + "\n"
	}
	return FormatNoteList(res.Matches)
}

func FormatNoteContent(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to raw content if renderer fails
		return content, nil //nolint:nilerr // Intentional fallback
	}

	out, err := renderer.Render(content)
	if err != nil {
		return content, nil //nolint:nilerr // Intentional fallback
	}
	return out, nil
}

func FormatNoteHeader(note *models.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s\n", bold(note.Title), star(note)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(note.ID.String())))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(note.CreatedAt.Format(timeLayout))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(note.UpdatedAt.Format(timeLayout))))

	sb.WriteString(Separator())
	return sb.String()
}

func FormatStats(s notes.Stats) string {
	return fmt.Sprintf("%s %d  %s %d\n", faint("Notes:"), s.Total, faint("Favourites:"), s.Favourites)
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}
