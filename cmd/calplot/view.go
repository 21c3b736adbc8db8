package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/source"
	"github.com/janekbaraniewski/calplot/internal/tui"
)

func newViewCommand(cfg config.Config) *cobra.Command {
	var (
		in    inputFlags
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "view [file.csv]",
		Short: "Browse the calendar interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.apply(cmd, cfg)
			if err != nil {
				return err
			}
			load, err := in.loader(c, args)
			if err != nil {
				return err
			}
			series, err := load(cmd.Context())
			if err != nil {
				return err
			}

			model := tui.NewModel(series, c)
			model.SetReload(load)
			if opts, err := in.renderOptions(c); err != nil {
				return err
			} else if c.ThemeFile != "" {
				model.SetTheme(opts.Theme)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			program := tea.NewProgram(model, tea.WithAltScreen())

			if watch && len(args) > 0 && in.dataset == "" {
				go func() {
					err := source.Watch(ctx, args[0], source.DefaultDebounce, func() {
						s, err := load(ctx)
						program.Send(tui.SeriesMsg{Series: s, Err: err})
					})
					if err != nil {
						log.Printf("[view] watch stopped: %v", err)
					}
				}()
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					cancel()
					program.Quit()
				case <-ctx.Done():
				}
			}()

			_, err = program.Run()
			return err
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the CSV file changes")
	return cmd
}
