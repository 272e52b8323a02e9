package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spellbook-cards/spellbook-go/internal/client"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		password, _ := cmd.Flags().GetString("password")
		if user == "" {
			return fmt.Errorf("--user is required")
		}
		if password == "" {
			var err error
			if password, err = promptSecret("Password: "); err != nil {
				return err
			}
		}

		u, err := app.Login(cmd.Context(), user, password)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", u.Username, u.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.Logout(cmd.Context())
		fmt.Println("Signed out.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new account. Depending on the server's registration mode the
account may need an invite code or admin approval before it can sign in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := client.RegisterRequest{}
		req.Email, _ = cmd.Flags().GetString("email")
		req.Username, _ = cmd.Flags().GetString("user")
		req.InviteCode, _ = cmd.Flags().GetString("invite")
		req.Password, _ = cmd.Flags().GetString("password")
		if req.Password == "" {
			var err error
			if req.Password, err = promptSecret("Password: "); err != nil {
				return err
			}
		}

		u, err := app.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		if u.Status != "" && u.Status != "approved" {
			fmt.Printf("Account %s created (status: %s). Sign in once it is approved.\n", u.Username, u.Status)
			return nil
		}
		fmt.Printf("Account %s created. Run \"spellbook login\" to sign in.\n", u.Username)
		return nil
	},
}

var checkInviteCmd = &cobra.Command{
	Use:   "check-invite <code>",
	Short: "Check whether an invite code is usable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		v, err := app.ValidateInvite(cmd.Context(), args[0], email)
		if err != nil {
			return err
		}
		printJSON(v)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := app.Session()
		switch {
		case !sess.Hydrated():
			fmt.Println("Session state unknown.")
			return nil
		case !sess.IsAuthenticated():
			fmt.Println("Not signed in.")
			return nil
		}

		refresh, _ := cmd.Flags().GetBool("refresh")
		u := sess.User()
		if refresh || u == nil {
			var err error
			if u, err = app.Me(cmd.Context()); err != nil {
				return err
			}
		}
		printJSON(u)
		return nil
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the account password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		current, err := promptSecret("Current password: ")
		if err != nil {
			return err
		}
		next, err := promptSecret("New password: ")
		if err != nil {
			return err
		}
		if err := app.ChangePassword(cmd.Context(), current, next); err != nil {
			return err
		}
		fmt.Println("Password changed.")
		return nil
	},
}

// promptSecret reads a line from stdin. Terminal echo suppression is left to
// the invoking shell; piping a password in works for scripts.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	s := strings.TrimRight(line, "\r\n")
	if s == "" {
		return "", fmt.Errorf("empty input")
	}
	return s, nil
}

func init() {
	loginCmd.Flags().StringP("user", "u", "", "username or email")
	loginCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")

	registerCmd.Flags().String("email", "", "email address")
	registerCmd.Flags().StringP("user", "u", "", "username")
	registerCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	registerCmd.Flags().String("invite", "", "invite code (invite-only servers)")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("user")

	whoamiCmd.Flags().Bool("refresh", false, "fetch the profile from the server instead of the cache")
	checkInviteCmd.Flags().String("email", "", "email to check against invite restrictions")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, passwdCmd, checkInviteCmd)
}
