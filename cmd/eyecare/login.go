package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			reader := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Email: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			pair, err := a.auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := a.session.Login(pair.AccessToken, pair.RefreshToken); err != nil {
				return err
			}

			if err := a.session.WaitProfile(cmd.Context()); err != nil {
				a.log.Warn().Err(err).Msg("profile fetch did not settle")
			}
			if p := a.session.Profile(); p != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", p.FullName, p.Role)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			}
			return nil
		},
	}
	cmd.Flags().String("username", "", "Account email")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			if err := a.session.WaitProfile(cmd.Context()); err != nil {
				return err
			}
			p := a.session.Profile()
			if p == nil {
				return fmt.Errorf("profile unavailable; the token may have expired")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", "ID", p.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", "Email", p.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", "Name", p.FullName)
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", "Role", p.Role)
			return nil
		},
	}
}

func (a *app) bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Ensure the backend's default account exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.auth.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}
