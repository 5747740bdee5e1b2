// ABOUTME: Show command for displaying a single note.
// ABOUTME: Renders the description as markdown with glamour.

package main

import (
	"fmt"

	"github.com/harper/notely/internal/ui"
	"github.com/spf13/cobra"
)

var showEmail string

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a note",
	Long:  `Display a note's full description with rendered markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ctx := cmd.Context()
		owner, err := a.owner(ctx, showEmail)
		if err != nil {
			return err
		}

		note, err := a.notes.Resolve(ctx, owner, args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}

		fmt.Print(ui.FormatNoteHeader(note))
		if note.Description == "" {
			return nil
		}
		content, _ := ui.FormatNoteContent(note.Description)
		fmt.Print(content)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showEmail, "email", "", "account that owns the note")
	rootCmd.AddCommand(showCmd)
}
