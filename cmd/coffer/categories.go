package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coffertool/coffer/internal/cli"
	"github.com/coffertool/coffer/internal/registry"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage budget categories",
		Long:  `List, add, update, and delete the budget envelopes proposals draw from.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func newRegistry(cmd *cobra.Command) (*registry.Registry, error) {
	client, sess, err := requireSession(cmd.Context())
	if err != nil {
		return nil, err
	}
	return registry.New(client, client, sess.User()), nil
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := newRegistry(cmd)
			if err != nil {
				return err
			}

			categories, err := reg.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'coffer categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Allocated"),
				cli.HeaderStyle.Render("Remaining"),
				cli.HeaderStyle.Render("Committed"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12))

			for _, cat := range categories {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					cat.ID, cat.Name,
					formatMoney(cat.AllocatedBudget),
					formatMoney(cat.RemainingBudget),
					formatMoney(cat.Committed()))
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <allocated-budget>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			allocated, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid allocated budget %q", args[1])
			}

			reg, err := newRegistry(cmd)
			if err != nil {
				return err
			}

			cat, err := reg.Create(cmd.Context(), args[0], allocated)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %d) with %s allocated",
				cat.Name, cat.ID, formatMoney(cat.AllocatedBudget))))
			return nil
		},
	}
}

func updateCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <name> <allocated-budget>",
		Short: "Update a category",
		Long:  `Update a category's name or allocation. The allocation cannot drop below the amount already committed to approved proposals.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}
			allocated, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid allocated budget %q", args[2])
			}

			reg, err := newRegistry(cmd)
			if err != nil {
				return err
			}

			cat, err := reg.Update(cmd.Context(), id, args[1], allocated)
			if err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %q: %s allocated, %s remaining",
				cat.Name, formatMoney(cat.AllocatedBudget), formatMoney(cat.RemainingBudget))))
			return nil
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  `Delete a category. Refused while any pending or approved proposal still references it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			if !force {
				prompter := cli.NewPrompter(os.Stdin, os.Stdout)
				ok, err := prompter.Confirm(fmt.Sprintf("Delete category %d?", id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println(cli.SubtleStyle.Render("Canceled."))
					return nil
				}
			}

			reg, err := newRegistry(cmd)
			if err != nil {
				return err
			}
			if err := reg.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}
