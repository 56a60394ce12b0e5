package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"bazaar/internal/search"
)

var (
	searchTimeout time.Duration
	searchTyped   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run one query through the search coordinator and print the results",
	Long: `Run one query without the interactive UI.

With --typed the query is submitted one keystroke at a time, the way the
search box would, so the debounce window collapses the prefixes into a
single dispatch before the final text is flushed.

Examples:
  bazaar search "wool cap"
  bazaar search --typed headphones
  bazaar search --timeout 2s lamp`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 10*time.Second, "How long to wait for the result")
	searchCmd.Flags().BoolVar(&searchTyped, "typed", false, "Submit the query one keystroke at a time")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	text := args[0]

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.EnsureSeeded(cmd.Context()); err != nil {
		return err
	}

	outcomes := make(chan search.Outcome, 16)
	coord := a.NewCoordinator(search.PresenterFunc(func(o search.Outcome) {
		select {
		case outcomes <- o:
		default:
		}
	}))
	defer coord.Close()

	if searchTyped {
		for i := range text {
			if i > 0 {
				coord.Submit(text[:i])
			}
		}
	}
	coord.Submit(text)
	coord.Flush()

	ctx, cancel := context.WithTimeout(cmd.Context(), searchTimeout)
	defer cancel()

	o, err := awaitOutcome(ctx, outcomes, text)
	if err != nil {
		return err
	}
	return printOutcome(cmd.OutOrStdout(), o)
}

// awaitOutcome returns the first outcome that answers text
func awaitOutcome(ctx context.Context, outcomes <-chan search.Outcome, text string) (search.Outcome, error) {
	for {
		select {
		case o := <-outcomes:
			if o.Query == text {
				return o, nil
			}
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return search.Outcome{}, fmt.Errorf("no result for %q within %s", text, searchTimeout)
			}
			return search.Outcome{}, ctx.Err()
		}
	}
}

func printOutcome(w io.Writer, o search.Outcome) error {
	switch o.Kind {
	case search.OutcomeFailure:
		return fmt.Errorf("search failed for %q: %w", o.Query, o.Err)
	case search.OutcomeEmpty:
		if strings.TrimSpace(o.Query) == "" {
			fmt.Fprintln(w, "Empty query")
		} else {
			fmt.Fprintf(w, "No results for %q\n", o.Query)
		}
		return nil
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TITLE", "CATEGORY", "PRICE", "SELLER").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, l := range o.Items {
		t.Row(l.Title, l.Category, l.Price(), l.Seller)
	}

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d results for %q in %s\n", len(o.Items), o.Query, o.Elapsed.Round(time.Millisecond))
	return nil
}
