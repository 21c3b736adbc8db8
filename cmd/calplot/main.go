package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/calplot/internal/appupdate"
	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/version"
)

func main() {
	if os.Getenv("CALPLOT_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	path := config.ConfigPath()
	if p := os.Getenv("CALPLOT_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", path)
		os.Exit(1)
	}

	if err := newRootCommand(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "calplot",
		Short:         "calplot draws calendar heatmaps of daily time series in the terminal.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(newYearsCommand(cfg))
	root.AddCommand(newMonthsCommand(cfg))
	root.AddCommand(newViewCommand(cfg))
	root.AddCommand(newImportCommand(cfg))
	root.AddCommand(newDatasetsCommand(cfg))
	root.AddCommand(newServeCommand(cfg))
	root.AddCommand(newTokenCommand(cfg))
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	var (
		check      bool
		releaseURL string
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, version.String()); err != nil || !check {
				return err
			}
			res, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{
				CurrentVersion:   version.Version,
				LatestReleaseURL: releaseURL,
			})
			if err != nil {
				return err
			}
			switch {
			case res.CurrentVersion == "":
				fmt.Fprintln(out, "development build, skipping release check")
			case res.UpdateAvailable:
				fmt.Fprintf(out, "calplot %s is available: %s\n", res.LatestVersion, res.UpgradeHint)
			default:
				fmt.Fprintln(out, "calplot is up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check for a newer release")
	cmd.Flags().StringVar(&releaseURL, "release-url", "", "override the release API endpoint")
	_ = cmd.Flags().MarkHidden("release-url")
	return cmd
}
