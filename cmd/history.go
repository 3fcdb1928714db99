package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ardfetch/internal/history"
)

var flagHistoryLimit int

var faintStyle = lipgloss.NewStyle().Faint(true)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show download history",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear download history",
	Args:  cobra.NoArgs,
	RunE:  historyClearRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Max entries to show (0 = all)")
	historyCmd.AddCommand(historyClearCmd)
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No downloads recorded.")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %s  %s  tier %d",
			faintStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
			e.Output,
			humanize.IBytes(uint64(e.Bytes)),
			e.Quality,
		)
		if e.Subtitles {
			line += "  +subs"
		}
		fmt.Println(line)
		fmt.Println(faintStyle.Render("                  " + e.PageURL))
	}
	return nil
}

func historyClearRun(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("History cleared.")
	return nil
}
