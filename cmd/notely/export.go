// ABOUTME: Export command for backing up a user's notes.
// ABOUTME: Supports JSON and markdown with YAML frontmatter.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/notely/internal/models"
	"github.com/harper/notely/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const exportVersion = "1.0"

type ExportNote struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"-"`
	IsFavourite bool      `json:"is_favourite" yaml:"favourite"`
	CreatedAt   time.Time `json:"created_at" yaml:"created"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated"`
}

type ExportData struct {
	ExportedAt time.Time    `json:"exported_at"`
	Version    string       `json:"version"`
	Owner      string       `json:"owner"`
	Notes      []ExportNote `json:"notes"`
}

func exportNote(n *models.Note) ExportNote {
	return ExportNote{
		ID:          n.ID.String(),
		Title:       n.Title,
		Description: n.Description,
		IsFavourite: n.IsFavourite,
		CreatedAt:   n.CreatedAt.UTC(),
		UpdatedAt:   n.UpdatedAt.UTC(),
	}
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes",
	Long:  `Export a user's notes to JSON or a directory of markdown files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")
		notePrefix, _ := cmd.Flags().GetString("note")

		if format != "json" && format != "md" {
			return fmt.Errorf("unknown format: %s", format)
		}

		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := cmd.Context()
		owner, err := a.owner(ctx, email)
		if err != nil {
			return err
		}

		var list []*models.Note
		if notePrefix != "" {
			note, err := a.notes.Resolve(ctx, owner, notePrefix)
			if err != nil {
				return fmt.Errorf("failed to get note: %w", err)
			}
			list = append(list, note)
		} else {
			list, err = a.notes.List(ctx, owner)
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}
		}

		if format == "md" {
			if outputPath == "" {
				outputPath = "export"
			}
			if err := exportMarkdown(list, outputPath); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Exported %d notes to %s", len(list), outputPath)))
			return nil
		}

		if outputPath == "" || outputPath == "-" {
			return exportJSON(os.Stdout, owner.Email, list, time.Now())
		}
		f, err := os.Create(outputPath) //nolint:gosec // User-specified file path is expected CLI behavior
		if err != nil {
			return err
		}
		if err := exportJSON(f, owner.Email, list, time.Now()); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success(fmt.Sprintf("Exported %d notes to %s", len(list), outputPath)))
		return nil
	},
}

func exportJSON(w io.Writer, owner string, list []*models.Note, now time.Time) error {
	export := ExportData{
		ExportedAt: now.UTC(),
		Version:    exportVersion,
		Owner:      owner,
		Notes:      make([]ExportNote, 0, len(list)),
	}
	for _, n := range list {
		export.Notes = append(export.Notes, exportNote(n))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}

// markdownNote renders n as YAML frontmatter followed by its description.
func markdownNote(n *models.Note) ([]byte, error) {
	frontmatter, err := yaml.Marshal(exportNote(n))
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(frontmatter)
	sb.WriteString("---\n\n")
	sb.WriteString(n.Description)
	if n.Description != "" && !strings.HasSuffix(n.Description, "\n") {
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

func exportMarkdown(list []*models.Note, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	for _, n := range list {
		data, err := markdownNote(n)
		if err != nil {
			return fmt.Errorf("render %s: %w", n.ID, err)
		}
		// Titles are not unique, the id prefix keeps filenames apart.
		filename := fmt.Sprintf("%s-%s.md", sanitizeFilename(n.Title), n.ID.String()[:6])
		if err := os.WriteFile(filepath.Join(outputDir, filename), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	name = strings.TrimSpace(replacer.Replace(name))
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}
	if name == "" {
		name = "untitled"
	}
	return name
}

func init() {
	exportCmd.Flags().String("email", "", "account whose notes to export")
	exportCmd.Flags().StringP("format", "f", "json", "export format (json|md)")
	exportCmd.Flags().StringP("output", "o", "", "output path")
	exportCmd.Flags().StringP("note", "n", "", "single note ID prefix to export")
	rootCmd.AddCommand(exportCmd)
}
