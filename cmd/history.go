package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/strava-export/internal"
	"github.com/spf13/cobra"
)

var historyLimit int

var (
	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// historyCmd lists recorded exports
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous exports",
	Long:  `List exports recorded in the local history ledger, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if _, err := os.Stat(cfg.History.Path); errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(out, headerStyle.Render("No exports recorded yet"))
			return nil
		}

		h, err := internal.OpenHistoryReadOnly(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer h.Close()

		entries, err := h.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		displayHistory(out, entries)
		return nil
	},
}

func displayHistory(w io.Writer, entries []internal.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No exports recorded yet"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d export(s)", len(entries))))
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			dimStyle.Render(exportedWhen(e.ExportedAt, time.Now())),
			kindStyle.Render(e.Kind),
			countStyle.Render(strconv.Itoa(e.Count)),
			e.Format,
			e.Path,
		})
	}
	renderTable(w, []string{"Exported", "Kind", "Activities", "Format", "Path"}, rows)
}

// exportedWhen formats t with less detail the older it is
func exportedWhen(t, now time.Time) string {
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of exports to show (0 shows all)")
}
