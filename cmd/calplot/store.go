package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/source"
)

func newImportCommand(cfg config.Config) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "import <dataset> <file.csv>",
		Short: "Import a CSV file into the local store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.apply(cmd, cfg)
			if err != nil {
				return err
			}
			series, err := source.ReadCSVFile(args[1], in.csvOptions(c))
			if err != nil {
				return err
			}
			store, err := source.OpenStore(c.StorePath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Import(cmd.Context(), args[0], series)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d days into %s\n", n, args[0])
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newDatasetsCommand(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ls"},
		Short:   "List datasets held by the local store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := source.OpenStore(cfg.StorePath)
			if err != nil {
				return err
			}
			defer store.Close()

			sets, err := store.Datasets(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDAYS\tFIRST\tLAST\tIMPORTED")
			for _, d := range sets {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					d.Name,
					d.Rows,
					d.First.Format("2006-01-02"),
					d.Last.Format("2006-01-02"),
					d.ImportedAt.Local().Format("2006-01-02 15:04"),
				)
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(newDatasetsDeleteCommand(cfg))
	return cmd
}

func newDatasetsDeleteCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <dataset>",
		Short: "Remove a dataset from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := source.OpenStore(cfg.StorePath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("dataset %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d days from %s\n", n, args[0])
			return nil
		},
	}
}
