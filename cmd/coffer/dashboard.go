package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/cli"
	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/dashboard"
	"github.com/coffertool/coffer/internal/model"
)

func dashboardCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show budget KPIs and per-ministry rollups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var categories []model.Category
			var proposals []model.Proposal

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

				if categories, err = snap.Categories(ctx); err != nil {
					return err
				}
				if proposals, err = snap.Proposals(ctx, "", "", 0); err != nil {
					return err
				}
			} else {
				client, _, err := requireSession(ctx)
				if err != nil {
					return err
				}
				remote, err := client.GetDashboardSummary(ctx)
				if err != nil {
					return fmt.Errorf("failed to load dashboard: %w", err)
				}
				categories = remote.Categories
				if proposals, err = client.ListProposals(ctx, api.ProposalFilter{}); err != nil {
					return fmt.Errorf("failed to load proposals: %w", err)
				}

				if snap, err := openSnapshot(ctx); err == nil {
					if err := snap.ReplaceSnapshot(ctx, categories, proposals); err != nil {
						common.LogError(err, "Failed to refresh local snapshot",
							common.Fields{"categories": len(categories), "proposals": len(proposals)})
						fmt.Println(cli.FormatWarning("could not refresh local snapshot: " + err.Error()))
					}
					_ = snap.Close()
				}
			}

			printSummary(dashboard.Summarize(categories, proposals))
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "render the last synced snapshot instead of calling the API")
	return cmd
}

func printSummary(s dashboard.Summary) {
	fmt.Println(cli.TitleStyle.Render("Budget Overview"))
	fmt.Printf("  Total allocated:  %s\n", formatMoney(s.KPIs.TotalAllocated))
	fmt.Printf("  Total remaining:  %s\n", formatMoney(s.KPIs.TotalRemaining))
	fmt.Printf("  Total approved:   %s\n", formatMoney(s.KPIs.TotalApproved))
	fmt.Printf("  Utilization:      %.1f%%\n\n", s.KPIs.Utilization*100)

	if len(s.CategoryRows) > 0 {
		fmt.Println(cli.HeaderStyle.Render("Categories"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", "Name", "Allocated", "Remaining", "Committed")
		for _, row := range s.CategoryRows {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
				row.Name, formatMoney(row.Allocated), formatMoney(row.Remaining), formatMoney(row.Committed))
		}
		w.Flush()
		fmt.Println()
	}

	if len(s.MinistryRows) > 0 {
		fmt.Println(cli.HeaderStyle.Render("Ministries"))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", "Ministry", "Proposals", "Pending", "Requested", "Approved")
		for _, row := range s.MinistryRows {
			fmt.Fprintf(w, "  %s\t%d\t%d\t%s\t%s\n",
				row.Ministry, row.ProposalCount, row.PendingCount,
				formatMoney(row.TotalRequested), formatMoney(row.TotalApproved))
		}
		w.Flush()
	}

}
