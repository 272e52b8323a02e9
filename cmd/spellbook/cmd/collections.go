package cmd

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/spellbook-cards/spellbook-go/internal/client"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"col"},
	Short:   "Manage card collections",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initApp(cmd.Context()); err != nil {
			return err
		}
		return requireAuth()
	},
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := app.Collections(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(cols)
		return nil
	},
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		col, err := app.CreateCollection(cmd.Context(), client.CreateCollectionRequest{
			Name:        args[0],
			Description: desc,
		})
		if err != nil {
			return err
		}
		printJSON(col)
		return nil
	},
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show <collection-id>",
	Short: "Show a collection and its cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "collection id")
		if err != nil {
			return err
		}
		col, err := app.Collection(cmd.Context(), id)
		if err != nil {
			return err
		}
		printJSON(col)
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <collection-id>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "collection id")
		if err != nil {
			return err
		}
		if err := app.DeleteCollection(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var collectionsAddCmd = &cobra.Command{
	Use:   "add <collection-id> <card-scryfall-id>",
	Short: "Add a card to a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		colID, err := parseID(args[0], "collection id")
		if err != nil {
			return err
		}
		cardID, err := parseID(args[1], "card id")
		if err != nil {
			return err
		}
		qty, _ := cmd.Flags().GetInt("quantity")
		cond, _ := cmd.Flags().GetString("condition")

		cc, err := app.AddCard(cmd.Context(), colID, client.AddCardRequest{
			CardScryfallID: cardID,
			Quantity:       qty,
			Condition:      cond,
		})
		if err != nil {
			return err
		}
		printJSON(cc)
		return nil
	},
}

var collectionsRemoveCmd = &cobra.Command{
	Use:   "remove <collection-id> <card-id>",
	Short: "Remove a card entry from a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		colID, err := parseID(args[0], "collection id")
		if err != nil {
			return err
		}
		cardID, err := parseID(args[1], "card id")
		if err != nil {
			return err
		}
		if err := app.RemoveCard(cmd.Context(), colID, cardID); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil
	},
}

func parseID(s, what string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad %s: %w", what, err)
	}
	return id, nil
}

func init() {
	collectionsCreateCmd.Flags().StringP("description", "d", "", "collection description")
	collectionsAddCmd.Flags().IntP("quantity", "q", 1, "number of copies")
	collectionsAddCmd.Flags().String("condition", "", "card condition, e.g. NM")

	collectionsCmd.AddCommand(collectionsListCmd, collectionsCreateCmd, collectionsShowCmd,
		collectionsDeleteCmd, collectionsAddCmd, collectionsRemoveCmd)
	rootCmd.AddCommand(collectionsCmd)
}
