package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/coinwatch/internal/actions"
	"github.com/dotcommander/coinwatch/internal/models"
)

func NewAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Sign in and out",
	}

	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountShowCmd())
	cmd.AddCommand(newAccountLogoutCmd())
	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var username, id string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in, replacing the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return cmdErr(cmd, models.ErrorUsernameRequired)
			}

			var account models.Account
			if err := withDB(cmd, func(db *DB) error {
				a, err := actions.AccountLogin(db, username, id)
				if err != nil {
					return err
				}
				account = a
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Account models.Account `json:"account"`
			}
			return printSuccess(cmd, resp{Account: account})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&id, "id", "", "Account id (default: random UUID)")
	return cmd
}

func newAccountShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var account models.Account
			if err := withDB(cmd, func(db *DB) error {
				a, err := actions.AccountCurrent(db)
				if err != nil {
					return err
				}
				account = a
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Account models.Account `json:"account"`
			}
			return printSuccess(cmd, resp{Account: account})
		},
	}
}

func newAccountLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			var account models.Account
			if err := withDB(cmd, func(db *DB) error {
				a, err := actions.AccountLogout(db)
				if err != nil {
					return err
				}
				account = a
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				SignedOut models.Account `json:"signed_out"`
			}
			return printSuccess(cmd, resp{SignedOut: account})
		},
	}
}
