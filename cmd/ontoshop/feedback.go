package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/underlay/ontoshop"
)

func feedbackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Submit and manage feedback",
	}

	var form ontoshop.FeedbackForm
	add := &cobra.Command{
		Use:   "add",
		Short: "Submit feedback as the current user",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			entry, err := a.shop.SubmitFeedback(a.session, form)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		}),
	}
	add.Flags().StringVar(&form.Email, "email", "", "Contact email")
	add.Flags().StringVar(&form.Rating, "rating", "", "Rating from 1 to 5")
	add.Flags().StringVar(&form.Comment, "comment", "", "Free text comment")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("rating")

	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every feedback entry",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			entries, err := a.shop.ListFeedback(a.session)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entries)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a feedback entry",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := a.shop.DeleteFeedback(a.session, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted feedback %s\n", args[0])
			return nil
		}),
	})

	return cmd
}
