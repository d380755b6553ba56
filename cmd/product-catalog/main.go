package main

import (
	"fmt"
	"os"

	"github.com/n9te9/product-catalog/graph"
	"github.com/n9te9/product-catalog/server"
	"github.com/spf13/cobra"
)

var version = "v0.1.0"

type flags struct {
	config  string
	catalog string
	port    int
}

// loadOption reads the option file and applies command line overrides. The default option
// file may be absent.
func (f *flags) loadOption(cmd *cobra.Command) (server.ServerOption, error) {
	opt, err := server.LoadOption(f.config, !cmd.Flags().Changed("config"))
	if err != nil {
		return server.ServerOption{}, err
	}

	if f.catalog != "" {
		opt.CatalogFile = f.catalog
	}
	if cmd.Flags().Changed("port") {
		opt.Port = f.port
	}

	return opt, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Product Catalog",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Product Catalog %s\n", version)
		},
	}
}

func newInitCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default option file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := server.WriteDefaultOption(f.config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f.config)
			return nil
		},
	}
}

func newServeCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Product Catalog GraphQL server",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := f.loadOption(cmd)
			if err != nil {
				return err
			}
			return server.Run(opt)
		},
	}
	cmd.Flags().IntVar(&f.port, "port", 0, "port to listen on")

	return cmd
}

func newCheckCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog file and the GraphQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := f.loadOption(cmd)
			if err != nil {
				return err
			}

			if err := graph.CheckSDL([]byte(graph.SDL)); err != nil {
				return err
			}

			c, err := server.LoadCatalog(opt)
			if err != nil {
				return err
			}

			if _, err := graph.NewSchema(c, graph.SchemaOption{}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d products\n", c.Len())
			return nil
		},
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:           "product-catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&f.config, "config", server.DefaultOptionFile, "path to the option file")
	rootCmd.PersistentFlags().StringVar(&f.catalog, "catalog", "", "path to a catalog JSON file (defaults to the embedded catalog)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd(f))
	rootCmd.AddCommand(newServeCmd(f))
	rootCmd.AddCommand(newCheckCmd(f))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
