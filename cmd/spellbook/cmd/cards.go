package cmd

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/spellbook-cards/spellbook-go/internal/client"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Search and inspect cards",
}

var cardsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search card printings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := client.CardSearchParams{Query: args[0]}
		p.Set, _ = cmd.Flags().GetString("set")
		p.Colors, _ = cmd.Flags().GetString("colors")
		p.Rarity, _ = cmd.Flags().GetString("rarity")
		p.Type, _ = cmd.Flags().GetString("type")
		p.Page, _ = cmd.Flags().GetInt("page")
		p.PerPage, _ = cmd.Flags().GetInt("per-page")

		unique, _ := cmd.Flags().GetBool("unique")
		var (
			res *client.CardSearchResult
			err error
		)
		if unique {
			res, err = app.SearchUniqueCards(cmd.Context(), p)
		} else {
			res, err = app.SearchCards(cmd.Context(), p)
		}
		if err != nil {
			return err
		}
		printJSON(res)
		return nil
	},
}

var cardsShowCmd = &cobra.Command{
	Use:   "show <card-id>",
	Short: "Show one card printing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.FromString(args[0])
		if err != nil {
			return fmt.Errorf("bad card id: %w", err)
		}
		card, err := app.Card(cmd.Context(), id)
		if err != nil {
			return err
		}
		printJSON(card)
		return nil
	},
}

var cardsVersionsCmd = &cobra.Command{
	Use:   "versions <oracle-id>",
	Short: "List all printings of a card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.FromString(args[0])
		if err != nil {
			return fmt.Errorf("bad oracle id: %w", err)
		}
		versions, err := app.CardVersions(cmd.Context(), id)
		if err != nil {
			return err
		}
		printJSON(versions)
		return nil
	},
}

var setsCmd = &cobra.Command{
	Use:   "sets [code]",
	Short: "List sets, or show one by code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			set, err := app.Set(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJSON(set)
			return nil
		}
		sets, err := app.Sets(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(sets)
		return nil
	},
}

func init() {
	cardsSearchCmd.Flags().String("set", "", "filter by set code")
	cardsSearchCmd.Flags().String("colors", "", "filter by colors, e.g. WU")
	cardsSearchCmd.Flags().String("rarity", "", "filter by rarity")
	cardsSearchCmd.Flags().String("type", "", "filter by type line")
	cardsSearchCmd.Flags().Int("page", 0, "page number")
	cardsSearchCmd.Flags().Int("per-page", 0, "results per page")
	cardsSearchCmd.Flags().Bool("unique", false, "one result per card name")

	cardsCmd.AddCommand(cardsSearchCmd, cardsShowCmd, cardsVersionsCmd, setsCmd)
	rootCmd.AddCommand(cardsCmd)
}
