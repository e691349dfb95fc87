package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coffertool/coffer/internal/cli"
	"github.com/coffertool/coffer/internal/engine"
	"github.com/coffertool/coffer/internal/history"
	"github.com/coffertool/coffer/internal/model"
)

func proposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Submit, edit, and decide spending proposals",
	}

	cmd.AddCommand(listProposalsCmd())
	cmd.AddCommand(submitProposalCmd())
	cmd.AddCommand(editProposalCmd())
	cmd.AddCommand(deleteProposalCmd())
	cmd.AddCommand(approveProposalCmd())
	cmd.AddCommand(rejectProposalCmd())

	return cmd
}

func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	client, sess, err := requireSession(cmd.Context())
	if err != nil {
		return nil, err
	}
	return engine.New(client, client, sess.User()), nil
}

func listProposalsCmd() *cobra.Command {
	var raw history.RawFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := history.Normalize(raw)
			if err != nil {
				return err
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			proposals, err := eng.List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list proposals: %w", err)
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
	return cmd
}

func printProposalTable(proposals []model.Proposal) {
	if len(proposals) == 0 {
		fmt.Println(cli.InfoStyle.Render("No proposals found."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Ministry"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Title"),
		cli.HeaderStyle.Render("Requested"),
		cli.HeaderStyle.Render("Approved"),
		cli.HeaderStyle.Render("Status"))

	for _, p := range proposals {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Ministry, p.CategoryID, p.Title,
			formatMoney(p.RequestedAmount), approvedDisplay(p),
			cli.StatusStyle(string(p.Status)).Render(string(p.Status)))
	}
}

func proposalFlags(cmd *cobra.Command, req *engine.SubmitRequest) {
	cmd.Flags().StringVar(&req.Ministry, "ministry", "", "submitting ministry (defaults to your own)")
	cmd.Flags().IntVar(&req.CategoryID, "category", 0, "budget category id")
	cmd.Flags().StringVar(&req.Title, "title", "", "proposal title")
	cmd.Flags().StringVar(&req.Description, "description", "", "optional description")
	cmd.Flags().Float64Var(&req.RequestedAmount, "amount", 0, "requested amount")
}

func submitProposalCmd() *cobra.Command {
	var req engine.SubmitRequest

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new proposal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}

			p, err := eng.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Submitted proposal %q (ID: %d) for %s",
				p.Title, p.ID, formatMoney(p.RequestedAmount))))
			return nil
		},
	}

	proposalFlags(cmd, &req)
	return cmd
}

func editProposalCmd() *cobra.Command {
	var req engine.SubmitRequest

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a pending proposal",
		Long:  `Edit one of your ministry's proposals. Only pending proposals can change; decisions are final.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid proposal id %q", args[0])
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}

			p, err := eng.EditDraftProposal(cmd.Context(), id, req)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated proposal %d (%s)", p.ID, p.Title)))
			return nil
		},
	}

	proposalFlags(cmd, &req)
	return cmd
}

func deleteProposalCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pending proposal",
		Long:  `Delete one of your ministry's pending proposals. A reason is required.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid proposal id %q", args[0])
			}

			if strings.TrimSpace(reason) == "" {
				prompter := cli.NewPrompter(os.Stdin, os.Stdout)
				reason, err = prompter.Ask("Reason for deletion:")
				if err != nil {
					return err
				}
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}
			if err := eng.DeleteProposal(cmd.Context(), id, reason); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted proposal %d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason for deletion (prompted when omitted)")
	return cmd
}

func approveProposalCmd() *cobra.Command {
	var (
		amount float64
		notes  string
	)

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending proposal",
		Long: `Approve a pending proposal for an amount. The amount may not exceed
the smaller of the requested amount and the category's remaining
budget, both checked at decision time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid proposal id %q", args[0])
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}

			p, err := eng.Approve(cmd.Context(), id, amount, notes)
			if err != nil {
				return err
			}

			approved := formatMoney(amount)
			if p.ApprovedAmount != nil {
				approved = formatMoney(*p.ApprovedAmount)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Approved proposal %d for %s",
				p.ID, approved)))
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "approved amount")
	cmd.Flags().StringVar(&notes, "notes", "", "optional decision notes")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func rejectProposalCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid proposal id %q", args[0])
			}

			eng, err := newEngine(cmd)
			if err != nil {
				return err
			}

			p, err := eng.Reject(cmd.Context(), id, notes)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatWarning(fmt.Sprintf("Rejected proposal %d (%s)", p.ID, p.Title)))
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "optional decision notes")
	return cmd
}
