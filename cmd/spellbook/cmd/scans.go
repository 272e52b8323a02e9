package cmd

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/spellbook-cards/spellbook-go/internal/client"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Upload and review card scans",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initApp(cmd.Context()); err != nil {
			return err
		}
		return requireAuth()
	},
}

var scanUploadCmd = &cobra.Command{
	Use:   "upload <image>...",
	Short: "Upload card images for recognition",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var batchID *uuid.UUID
		if b, _ := cmd.Flags().GetString("batch"); b != "" {
			id, err := parseID(b, "batch id")
			if err != nil {
				return err
			}
			batchID = &id
		}
		noProcess, _ := cmd.Flags().GetBool("no-process")

		if len(args) == 1 {
			scan, err := app.UploadScan(cmd.Context(), args[0], batchID, !noProcess)
			if err != nil {
				return err
			}
			printJSON(scan)
			return nil
		}

		results := app.UploadScans(cmd.Context(), args, batchID, !noProcess)
		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
			}
		}
		fmt.Printf("Uploaded %d of %d images.\n", len(results)-failed, len(results))
		if failed > 0 {
			return fmt.Errorf("%d upload(s) failed", failed)
		}
		return nil
	},
}

var scanBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Manage scan batches",
}

var scanBatchCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new scan batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := client.CreateBatchRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.ConfidenceThreshold, _ = cmd.Flags().GetFloat64("threshold")
		if c, _ := cmd.Flags().GetString("collection"); c != "" {
			id, err := parseID(c, "collection id")
			if err != nil {
				return err
			}
			req.TargetCollectionID = &id
			req.AutoAddToCollection = true
		}
		b, err := app.CreateBatch(cmd.Context(), req)
		if err != nil {
			return err
		}
		printJSON(b)
		return nil
	},
}

var scanBatchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scan batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := app.Batches(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(bs)
		return nil
	},
}

var scanBatchShowCmd = &cobra.Command{
	Use:   "show <batch-id>",
	Short: "Show a batch with its scans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch id")
		if err != nil {
			return err
		}
		b, err := app.Batch(cmd.Context(), id)
		if err != nil {
			return err
		}
		printJSON(b)
		return nil
	},
}

var scanBatchFinalizeCmd = &cobra.Command{
	Use:   "finalize <batch-id>",
	Short: "Mark a batch as fully uploaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch id")
		if err != nil {
			return err
		}
		b, err := app.FinalizeBatch(cmd.Context(), id)
		if err != nil {
			return err
		}
		printJSON(b)
		return nil
	},
}

var scanBatchDeleteCmd = &cobra.Command{
	Use:   "delete <batch-id>",
	Short: "Delete a batch and its scans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "batch id")
		if err != nil {
			return err
		}
		if err := app.DeleteBatch(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var scanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		pending, _ := cmd.Flags().GetBool("pending")
		if pending {
			scans, err := app.PendingScans(cmd.Context())
			if err != nil {
				return err
			}
			printJSON(scans)
			return nil
		}
		status, _ := cmd.Flags().GetString("status")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")
		scans, err := app.Scans(cmd.Context(), status, page, perPage)
		if err != nil {
			return err
		}
		printJSON(scans)
		return nil
	},
}

var scanConfirmCmd = &cobra.Command{
	Use:   "confirm <scan-id> <card-scryfall-id>",
	Short: "Confirm a recognition result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scanID, err := parseID(args[0], "scan id")
		if err != nil {
			return err
		}
		cardID, err := parseID(args[1], "card id")
		if err != nil {
			return err
		}
		req := client.ScanConfirmRequest{CardScryfallID: cardID}
		if c, _ := cmd.Flags().GetString("collection"); c != "" {
			id, err := parseID(c, "collection id")
			if err != nil {
				return err
			}
			req.CollectionID = &id
			req.AddToCollection = true
		}
		req.Quantity, _ = cmd.Flags().GetInt("quantity")
		req.Condition, _ = cmd.Flags().GetString("condition")

		s, err := app.ConfirmScan(cmd.Context(), scanID, req)
		if err != nil {
			return err
		}
		printJSON(s)
		return nil
	},
}

var scanRejectCmd = &cobra.Command{
	Use:   "reject <scan-id>",
	Short: "Reject a recognition result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "scan id")
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		s, err := app.RejectScan(cmd.Context(), id, reason)
		if err != nil {
			return err
		}
		printJSON(s)
		return nil
	},
}

var scanReprocessCmd = &cobra.Command{
	Use:   "reprocess <scan-id>",
	Short: "Re-queue a scan for recognition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "scan id")
		if err != nil {
			return err
		}
		s, err := app.ReprocessScan(cmd.Context(), id)
		if err != nil {
			return err
		}
		printJSON(s)
		return nil
	},
}

var scanDeleteCmd = &cobra.Command{
	Use:   "delete <scan-id>",
	Short: "Delete a scan and its images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "scan id")
		if err != nil {
			return err
		}
		if err := app.DeleteScan(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var scanStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show scan statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.ScanStats(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(st)
		return nil
	},
}

var scanQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the processing queue status",
	RunE: func(cmd *cobra.Command, args []string) error {
		qs, err := app.QueueStatus(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(qs)
		return nil
	},
}

func init() {
	scanUploadCmd.Flags().String("batch", "", "batch to add the scans to")
	scanUploadCmd.Flags().Bool("no-process", false, "upload without queueing for recognition")

	scanBatchCreateCmd.Flags().String("name", "", "batch name")
	scanBatchCreateCmd.Flags().Float64("threshold", 0, "confidence threshold for auto-confirmation")
	scanBatchCreateCmd.Flags().String("collection", "", "auto-add confirmed cards to this collection")

	scanListCmd.Flags().Bool("pending", false, "only scans awaiting review")
	scanListCmd.Flags().String("status", "", "filter by status")
	scanListCmd.Flags().Int("page", 0, "page number")
	scanListCmd.Flags().Int("per-page", 0, "results per page")

	scanConfirmCmd.Flags().String("collection", "", "add the confirmed card to this collection")
	scanConfirmCmd.Flags().IntP("quantity", "q", 1, "number of copies")
	scanConfirmCmd.Flags().String("condition", "", "card condition")

	scanRejectCmd.Flags().String("reason", "", "rejection reason")

	scanBatchCmd.AddCommand(scanBatchCreateCmd, scanBatchListCmd, scanBatchShowCmd,
		scanBatchFinalizeCmd, scanBatchDeleteCmd)
	scanCmd.AddCommand(scanUploadCmd, scanBatchCmd, scanListCmd, scanConfirmCmd,
		scanRejectCmd, scanReprocessCmd, scanDeleteCmd, scanStatsCmd, scanQueueCmd)
	rootCmd.AddCommand(scanCmd)
}
