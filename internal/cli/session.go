package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	loginToken    string
	loginUsername string
	showToken     bool
)

// loginCmd stores credentials issued by the findings service
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the session token and username",
	Long: `Store the token and username issued by the findings service so later
commands can use them.

Example:
  findings login --token "$JWT" --username ana`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Login(loginToken, loginUsername); err != nil {
			return fmt.Errorf("login: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ Logged in as %s\n", loginUsername)
		if !s.Persistent() {
			fmt.Fprintf(os.Stderr, "⚠️  Storage unavailable: the session ends with this process\n")
		}
		return nil
	},
}

// logoutCmd forgets the stored credentials
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		s.Logout()
		fmt.Fprintf(os.Stderr, "✓ Logged out\n")
		return nil
	},
}

// whoamiCmd prints the stored identity
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored username",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		username, hasUser := s.Username.Get()
		token, hasToken := s.Token.Get()

		if !hasToken {
			fmt.Fprintln(os.Stderr, "Not logged in")
			if hasUser {
				fmt.Fprintf(os.Stderr, "(last user: %s)\n", username)
			}
			return nil
		}

		if hasUser {
			fmt.Println(username)
		} else {
			fmt.Println("(unknown user)")
		}
		if showToken {
			fmt.Println(token)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "State: %s\n", s.Location())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVar(&loginToken, "token", "", "session token (JWT)")
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "username")
	_ = loginCmd.MarkFlagRequired("token")
	_ = loginCmd.MarkFlagRequired("username")

	whoamiCmd.Flags().BoolVar(&showToken, "show-token", false, "also print the stored token")
}
