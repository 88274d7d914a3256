package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/resource-dashboard/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		password := loginPassword
		if password == "" {
			password = os.Getenv("DASHBOARD_PASSWORD")
		}
		result, err := deps.Auth.Login(cmd.Context(), dashboard.Credentials{Email: loginEmail, Password: password})
		if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
			return printErr
		}
		return err
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		result, err := deps.Auth.Logout(cmd.Context())
		if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
			return printErr
		}
		return err
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity and token expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := printJSON(cmd.OutOrStdout(), deps.Auth.WhoAmI()); err != nil {
			return err
		}
		_, err = deps.Auth.RequireSession()
		return err
	},
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (defaults to $DASHBOARD_PASSWORD)")
}
