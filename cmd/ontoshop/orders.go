package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/underlay/ontoshop"
)

func ordersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place and manage orders",
	}

	var form ontoshop.OrderForm
	place := &cobra.Command{
		Use:   "place",
		Short: "Order a product as the current user",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if form.ProductID == "" && form.ProductName == "" {
				return fmt.Errorf("one of --product or --product-id is required")
			}
			order, err := a.shop.PlaceOrder(a.session, form)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), order)
		}),
	}
	place.Flags().StringVar(&form.ProductName, "product", "", "Product name")
	place.Flags().StringVar(&form.ProductID, "product-id", "", "Product id")
	place.Flags().StringVarP(&form.Quantity, "quantity", "q", "1", "Units to order")

	cmd.AddCommand(place)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every order",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			orders, err := a.shop.ListOrders(a.session)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), orders)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the status of an order",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			order, err := a.shop.UpdateOrderStatus(a.session, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), order)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := a.shop.DeleteOrder(a.session, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted order %s\n", args[0])
			return nil
		}),
	})

	return cmd
}
