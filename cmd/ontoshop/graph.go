package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/underlay/ontoshop"
)

func exportCmd(a *app) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole graph as RDF/XML, N-Quads or JSON-LD",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			data, err := a.shop.Export(a.session, format)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0644)
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", ontoshop.FormatRDFXML, "Output format (xml, nquads, jsonld)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout if empty")
	return cmd
}

func importCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge an N-Quads file into the graph",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			added, err := a.shop.Import(a.session, string(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d triples\n", added)
			return nil
		}),
	}
	cmd.Flags().StringVar(&file, "file", "", "N-Quads file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
