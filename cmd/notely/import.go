// ABOUTME: Import command for restoring notes from an export.
// ABOUTME: Supports JSON files and markdown files or directories with frontmatter.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/notes"
	"github.com/harper/notely/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var importEmail string

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import notes",
	Long: `Import notes from a JSON export or markdown files into a user's account.

Imported notes get new ids and timestamps.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat path: %w", err)
		}

		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := cmd.Context()
		owner, err := a.owner(ctx, importEmail)
		if err != nil {
			return err
		}

		var inputs []notes.Input
		switch {
		case info.IsDir():
			inputs, err = readMarkdownDir(path)
		case strings.HasSuffix(path, ".json"):
			inputs, err = readJSON(path)
		default:
			var in notes.Input
			in, err = readMarkdownFile(path)
			inputs = []notes.Input{in}
		}
		if err != nil {
			return err
		}

		count := importInputs(ctx, a.notes, owner, inputs)
		fmt.Println(ui.Success(fmt.Sprintf("Imported %d notes", count)))
		return nil
	},
}

func importInputs(ctx context.Context, svc *notes.Service, owner auth.Identity, inputs []notes.Input) int {
	count := 0
	for _, in := range inputs {
		res, err := svc.Create(ctx, owner, in)
		if err != nil {
			fmt.Printf("Warning: failed to import %q: %v\n", in.Title, err)
			continue
		}
		if res.Kind == notes.KindInvalid {
			fmt.Printf("Warning: skipped %q: %s\n", in.Title, strings.Join(res.Form.FieldErrors("title"), " "))
			continue
		}
		count++
	}
	return count
}

func readJSON(path string) ([]notes.Input, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return nil, err
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	inputs := make([]notes.Input, 0, len(export.Notes))
	for _, en := range export.Notes {
		inputs = append(inputs, notes.Input{
			Title:       en.Title,
			Description: en.Description,
			IsFavourite: en.IsFavourite,
		})
	}
	return inputs, nil
}

func readMarkdownDir(dir string) ([]notes.Input, error) {
	var inputs []notes.Input
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		in, err := readMarkdownFile(path)
		if err != nil {
			fmt.Printf("Warning: failed to read %s: %v\n", path, err)
			return nil
		}
		inputs = append(inputs, in)
		return nil
	})
	return inputs, err
}

func readMarkdownFile(path string) (notes.Input, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified file path is expected CLI behavior
	if err != nil {
		return notes.Input{}, err
	}
	in, err := parseMarkdownNote(string(data))
	if err != nil {
		return notes.Input{}, err
	}
	if in.Title == "" {
		in.Title = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	return in, nil
}

// parseMarkdownNote reads an optional frontmatter block followed by the
// description. A file without frontmatter is all description.
func parseMarkdownNote(content string) (notes.Input, error) {
	var in notes.Input
	if strings.HasPrefix(content, "---\n") {
		parts := strings.SplitN(content, "---\n", 3)
		if len(parts) < 3 {
			return in, errors.New("unterminated frontmatter")
		}
		var frontmatter ExportNote
		if err := yaml.Unmarshal([]byte(parts[1]), &frontmatter); err != nil {
			return in, fmt.Errorf("parse frontmatter: %w", err)
		}
		in.Title = frontmatter.Title
		in.IsFavourite = frontmatter.IsFavourite
		content = parts[2]
	}
	in.Description = strings.TrimSpace(content)
	return in, nil
}

func init() {
	importCmd.Flags().StringVar(&importEmail, "email", "", "account to import into")
	rootCmd.AddCommand(importCmd)
}
