package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spellbook-cards/spellbook-go/internal/client"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Server administration (admin accounts only)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initApp(cmd.Context()); err != nil {
			return err
		}
		return requireAuth()
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		users, err := app.AdminUsers(cmd.Context(), status)
		if err != nil {
			return err
		}
		printJSON(users)
		return nil
	},
}

var adminApproveCmd = &cobra.Command{
	Use:   "set-status <user-id> <pending|approved|rejected|suspended>",
	Short: "Move an account through the approval workflow",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "user id")
		if err != nil {
			return err
		}
		u, err := app.SetUserStatus(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		printJSON(u)
		return nil
	},
}

var adminDeleteUserCmd = &cobra.Command{
	Use:   "delete-user <user-id>",
	Short: "Permanently delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "user id")
		if err != nil {
			return err
		}
		if err := app.DeleteUser(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var adminSettingsCmd = &cobra.Command{
	Use:   "settings [OPEN|INVITE_ONLY|ADMIN_APPROVAL]",
	Short: "Show or change the registration mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			s, err := app.UpdateSettings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJSON(s)
			return nil
		}
		s, err := app.Settings(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(s)
		return nil
	},
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show account statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.AdminStats(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(st)
		return nil
	},
}

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Manage registration invites",
}

var inviteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new invite code",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := client.CreateInviteRequest{}
		req.Email, _ = cmd.Flags().GetString("email")
		req.MaxUses, _ = cmd.Flags().GetInt("max-uses")
		req.Notes, _ = cmd.Flags().GetString("notes")
		if d, _ := cmd.Flags().GetDuration("expires-in"); d > 0 {
			t := time.Now().Add(d).UTC()
			req.ExpiresAt = &t
		}
		inv, err := app.CreateInvite(cmd.Context(), req)
		if err != nil {
			return err
		}
		printJSON(inv)
		return nil
	},
}

var inviteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued invites",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		list, err := app.Invites(cmd.Context(), page, size)
		if err != nil {
			return err
		}
		printJSON(list)
		return nil
	},
}

var inviteRevokeCmd = &cobra.Command{
	Use:   "revoke <invite-id>",
	Short: "Revoke an invite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "invite id")
		if err != nil {
			return err
		}
		if err := app.RevokeInvite(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Revoked.")
		return nil
	},
}

func init() {
	adminUsersCmd.Flags().String("status", "", "filter by approval status")

	inviteCreateCmd.Flags().String("email", "", "restrict the invite to an email")
	inviteCreateCmd.Flags().Int("max-uses", 1, "how many registrations the code allows")
	inviteCreateCmd.Flags().String("notes", "", "notes about the invite")
	inviteCreateCmd.Flags().Duration("expires-in", 0, "invite lifetime, e.g. 72h")

	inviteListCmd.Flags().Int("page", 0, "page number")
	inviteListCmd.Flags().Int("size", 0, "page size")

	inviteCmd.AddCommand(inviteCreateCmd, inviteListCmd, inviteRevokeCmd)
	adminCmd.AddCommand(adminUsersCmd, adminApproveCmd, adminDeleteUserCmd,
		adminSettingsCmd, adminStatsCmd, inviteCmd)
	rootCmd.AddCommand(adminCmd)
}
