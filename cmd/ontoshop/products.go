package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/underlay/ontoshop"
)

func productsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and manage products",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every product",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			products, err := a.shop.ListProducts(a.session)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), products)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			product, err := a.shop.GetProduct(a.session, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		}),
	})

	cmd.AddCommand(productAddCmd(a), productUpdateCmd(a))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product and its image",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := a.shop.DeleteProduct(a.session, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted product %s\n", args[0])
			return nil
		}),
	})

	return cmd
}

func productAddCmd(a *app) *cobra.Command {
	var (
		form  ontoshop.ProductForm
		image string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var upload *ontoshop.Upload
			if image != "" {
				data, err := os.ReadFile(image)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				upload = &ontoshop.Upload{Name: filepath.Base(image), Data: data}
			}

			product, err := a.shop.CreateProduct(a.session, form, upload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		}),
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Product name")
	cmd.Flags().StringVar(&form.Price, "price", "", "Unit price")
	cmd.Flags().StringVar(&form.StockLevel, "stock", "", "Units in stock")
	cmd.Flags().StringVar(&form.Discount, "discount", "", "Discount percentage")
	cmd.Flags().StringVar(&image, "image", "", "Image file to upload")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("stock")
	return cmd
}

func productUpdateCmd(a *app) *cobra.Command {
	var (
		name     string
		price    float64
		stock    int
		discount float64
		image    string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change product fields",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			var u ontoshop.ProductUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("price") {
				u.Price = &price
			}
			if flags.Changed("stock") {
				u.Stock = &stock
			}
			if flags.Changed("discount") {
				u.Discount = &discount
			}
			if flags.Changed("image-path") {
				u.Image = &image
			}

			product, err := a.shop.UpdateProduct(a.session, args[0], u)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().Float64Var(&price, "price", 0, "New unit price")
	cmd.Flags().IntVar(&stock, "stock", 0, "New stock level")
	cmd.Flags().Float64Var(&discount, "discount", 0, "New discount percentage")
	cmd.Flags().StringVar(&image, "image-path", "", "New image path relative to the media root")
	return cmd
}
