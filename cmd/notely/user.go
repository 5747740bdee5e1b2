// ABOUTME: User commands for managing accounts from the terminal.
// ABOUTME: Creates accounts with the same validation as the sign-up form.

package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/ui"
	"github.com/spf13/cobra"
)

var (
	userEmail     string
	userFirstName string
	userLastName  string
	userGender    string
	userPassword  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account",
	Long: `Create an active account.

Examples:
  notely user add --email ada@example.com --password 's3cret-pass'
  notely user add --email ada@example.com --first Ada --last Lovelace --password 's3cret-pass'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		session, err := a.auth.Register(cmd.Context(), auth.Registration{
			Email:           userEmail,
			FirstName:       userFirstName,
			LastName:        userLastName,
			Gender:          userGender,
			Password:        userPassword,
			PasswordConfirm: userPassword,
		})
		var fieldErrs auth.FieldErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for field := range fieldErrs {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				for _, msg := range fieldErrs[field] {
					fmt.Println(ui.Error(fmt.Sprintf("%s: %s", field, msg)))
				}
			}
			return errors.New("account not created")
		}
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		fmt.Println(ui.Success(fmt.Sprintf("Created account %s (%s)",
			session.Identity.Email, session.Identity.UserID.String()[:8])))
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userAddCmd.Flags().StringVar(&userFirstName, "first", "", "first name")
	userAddCmd.Flags().StringVar(&userLastName, "last", "", "last name")
	userAddCmd.Flags().StringVar(&userGender, "gender", "", "gender (M or F, optional)")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "password (at least 8 characters)")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}
