package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coffertool/coffer/internal/api"
	"github.com/coffertool/coffer/internal/cli"
	"github.com/coffertool/coffer/internal/model"
	"github.com/coffertool/coffer/internal/reconcile"
)

func contractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Turn uploaded contract files into proposal drafts",
	}

	cmd.AddCommand(parseContractCmd())
	cmd.AddCommand(createContractCmd())

	return cmd
}

// parseAndReconcile uploads the file, then marks drafts that already
// correspond to an existing proposal so they are never re-created.
func parseAndReconcile(cmd *cobra.Command, path string) (*reconcile.Reconciler, error) {
	client, _, err := requireSession(cmd.Context())
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	drafts, err := client.ParseContract(cmd.Context(), path, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract: %w", err)
	}

	existing, err := client.ListProposals(cmd.Context(), api.ProposalFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list existing proposals: %w", err)
	}

	r := reconcile.New(client, drafts, os.Stderr)
	r.Reconcile(existing)
	return r, nil
}

func printDraftTable(drafts []model.Draft) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("#"),
		cli.HeaderStyle.Render("Valid"),
		cli.HeaderStyle.Render("Ministry"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Title"),
		cli.HeaderStyle.Render("Requested"))

	for i, d := range drafts {
		valid := cli.SuccessStyle.Render("yes")
		if !d.Valid {
			valid = cli.ErrorStyle.Render("no: " + strings.Join(d.Errors, "; "))
		} else if d.IsCreated {
			valid = cli.SubtleStyle.Render("already created")
		}
		amount := "-"
		if d.RequestedAmount > 0 {
			amount = formatMoney(d.RequestedAmount)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i, valid, orDash(d.Ministry), orDash(d.CategoryName), orDash(d.Title), amount)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func parseContractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a contract file and review its drafts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseAndReconcile(cmd, args[0])
			if err != nil {
				return err
			}

			drafts := r.Drafts()
			if len(drafts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No drafts found in file."))
				return nil
			}
			printDraftTable(drafts)
			return nil
		},
	}
}

func createContractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file>",
		Short: "Parse a contract file and create proposals from all valid drafts",
		Long: `Parse a contract file and create a proposal for every valid draft
that does not already exist. Rows are processed one at a time in file
order; a failed row is reported and skipped so the rest still go
through.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseAndReconcile(cmd, args[0])
			if err != nil {
				return err
			}

			failures := r.CreateAllValid(cmd.Context())

			created, skipped := 0, 0
			for _, d := range r.Drafts() {
				switch {
				case d.IsCreated:
					created++
				default:
					skipped++
				}
			}

			for _, f := range failures {
				fmt.Println(cli.FormatError(f.Error()))
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d draft(s) created or already present, %d skipped, %d failed",
				created, skipped-len(failures), len(failures))))

			if len(failures) > 0 {
				return fmt.Errorf("%d draft(s) failed", len(failures))
			}
			return nil
		},
	}
}
