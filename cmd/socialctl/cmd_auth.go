package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	email    string
	password string
	nickname string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := svc.Register(cmd.Context(), email, password, nickname)
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d)\n", p.Nickname, p.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := svc.Login(cmd.Context(), email, password)
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", sess.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := svc.Logout(); err != nil {
			return fail(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&email, "email", "", "account email")
		c.Flags().StringVar(&password, "password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&nickname, "nickname", "", "public nickname")
	_ = registerCmd.MarkFlagRequired("nickname")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
}
