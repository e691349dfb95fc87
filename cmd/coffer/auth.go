package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/coffertool/coffer/internal/cli"
	"github.com/coffertool/coffer/internal/session"
)

func loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			username := args[0]

			if password == "" {
				fmt.Print("Password: ")
				raw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Println()
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(raw)
			}

			client := newAPIClient()
			result, err := client.Login(ctx, username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			store, err := sessionStore()
			if err != nil {
				return err
			}
			if _, err := session.Begin(store, result.AccessToken, result.User); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Logged in as %s (%s)", result.User.Username, result.User.Role)))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := sessionStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			fmt.Println(cli.FormatSuccess("Logged out"))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session's user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, sess, err := requireSession(cmd.Context())
			if err != nil {
				return err
			}
			user := sess.User()
			fmt.Printf("%s (%s)\n", user.Username, user.Role)
			if user.Ministry != "" {
				fmt.Printf("Ministry: %s\n", user.Ministry)
			}
			return nil
		},
	}
}
