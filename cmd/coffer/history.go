package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coffertool/coffer/internal/cli"
	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/engine"
	"github.com/coffertool/coffer/internal/history"
	"github.com/coffertool/coffer/internal/model"
)

func historyCmd() *cobra.Command {
	var (
		raw     history.RawFilter
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse decided and pending proposals",
		Long: `Browse the proposal history with filters. With --offline the last
synced snapshot is shown instead of querying the API.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := history.Normalize(raw)
			if err != nil {
				return err
			}

			if offline {
				snap, err := openSnapshot(ctx)
				if err != nil {
					return err
				}
				defer snap.Close()

				syncedAt, err := snap.SyncedAt(ctx)
				if err != nil {
					return err
				}
				if syncedAt.IsZero() {
					return fmt.Errorf("no local snapshot yet; run without --offline first")
				}
				fmt.Println(cli.SubtleStyle.Render("Offline snapshot from " + syncedAt.Local().Format("2006-01-02 15:04")))

				proposals, err := snap.Proposals(ctx, filter.Ministry, filter.Status, filter.CategoryID)
				if err != nil {
					return err
				}
				printProposalTable(applyAmountBounds(proposals, filter.MinAmount, filter.MaxAmount))
				return nil
			}

			client, sess, err := requireSession(ctx)
			if err != nil {
				return err
			}

			eng := engine.New(client, client, sess.User())
			proposals, err := eng.List(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			if snap, err := openSnapshot(ctx); err == nil {
				if categories, cErr := client.ListCategories(ctx); cErr == nil {
					if rErr := snap.ReplaceSnapshot(ctx, categories, proposals); rErr != nil {
						common.LogError(rErr, "Failed to refresh local snapshot",
							common.Fields{"proposals": len(proposals)})
					}
				}
				_ = snap.Close()
			}

			printProposalTable(proposals)
			return nil
		},
	}

	cmd.Flags().StringVar(&raw.Ministry, "ministry", "", "filter by ministry")
	cmd.Flags().StringVar(&raw.Status, "status", "", "filter by status (Pending, Approved, Rejected)")
	cmd.Flags().StringVar(&raw.CategoryID, "category", "", "filter by category id")
	cmd.Flags().StringVar(&raw.MinAmount, "min-amount", "", "minimum requested amount")
	cmd.Flags().StringVar(&raw.MaxAmount, "max-amount", "", "maximum requested amount")
	cmd.Flags().BoolVar(&offline, "offline", false, "render the last synced snapshot instead of calling the API")
	return cmd
}

// applyAmountBounds filters snapshot rows locally; the cache knows
// nothing about amount bounds.
func applyAmountBounds(proposals []model.Proposal, minAmount, maxAmount *float64) []model.Proposal {
	if minAmount == nil && maxAmount == nil {
		return proposals
	}
	var out []model.Proposal
	for _, p := range proposals {
		if minAmount != nil && p.RequestedAmount < *minAmount {
			continue
		}
		if maxAmount != nil && p.RequestedAmount > *maxAmount {
			continue
		}
		out = append(out, p)
	}
	return out
}
