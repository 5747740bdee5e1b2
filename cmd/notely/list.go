// ABOUTME: List command for displaying a user's notes.
// ABOUTME: Supports the favourites filter and case-insensitive search.

package main

import (
	"fmt"

	"github.com/harper/notely/internal/models"
	"github.com/harper/notely/internal/notes"
	"github.com/harper/notely/internal/ui"
	"github.com/spf13/cobra"
)

const defaultListLimit = 20

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Long:  `List a user's notes, most recently updated first. Optionally show only favourites or search titles and descriptions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		favFlag, _ := cmd.Flags().GetBool("favourites")
		searchFlag, _ := cmd.Flags().GetString("search")
		limitFlag, _ := cmd.Flags().GetInt("limit")

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

		if searchFlag != "" {
			res, err := a.notes.Search(ctx, owner, searchFlag)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			res.Matches = limitNotes(res.Matches, limitFlag)
			fmt.Print(ui.FormatSearchResult(res))
			return nil
		}

		mode := notes.ModeAll
		if favFlag {
			mode = notes.ModeFavourites
		}
		list, err := a.notes.FavouriteList(ctx, owner, mode)
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No notes found.")
			return nil
		}

		stats, err := a.notes.Stats(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to count notes: %w", err)
		}
		fmt.Print(ui.FormatStats(stats))
		fmt.Print(ui.Separator())
		fmt.Print(ui.FormatNoteList(limitNotes(list, limitFlag)))
		return nil
	},
}

func limitNotes(list []*models.Note, limit int) []*models.Note {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

func init() {
	listCmd.Flags().String("email", "", "account whose notes to list")
	listCmd.Flags().BoolP("favourites", "f", false, "show only favourite notes")
	listCmd.Flags().StringP("search", "s", "", "search titles and descriptions")
	listCmd.Flags().IntP("limit", "n", defaultListLimit, "maximum number of notes to show")
	rootCmd.AddCommand(listCmd)
}
