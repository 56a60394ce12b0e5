package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bazaar/internal/ui"
	"bazaar/internal/ui/views"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive search box (default)",
	Long: `Open the interactive search box.

Keys:
  type          search as you type
  enter         search now, skipping the debounce window
  up/down       move the selection
  ctrl+o        open the selected listing in the pager
  esc           clear the query, quit when it is already empty
  f1            toggle help
  ctrl+c        quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.EnsureSeeded(ctx); err != nil {
		return err
	}

	renderer := views.NewRenderer()
	pager := ui.NewListingPager(renderer.Listings(), a.Store)
	fwd := ui.NewForwarder()
	coord := a.NewCoordinator(fwd)
	model := ui.NewModel(coord, pager, renderer, a.Logger.Named("ui"))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	pager.SetProgram(p)
	fwd.Start(p.Send)

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()

	// The coordinator goes first so nothing is presented into a closed forwarder
	model.Teardown()
	fwd.Close()
	fwd.Wait()

	if runErr != nil && ctx.Err() == nil {
		a.Logger.Error("ui exited with error", zap.Error(runErr))
		return fmt.Errorf("ui error: %w", runErr)
	}
	return nil
}
