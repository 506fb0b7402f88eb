package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/sensorgen/internal/device"
	"golang.org/x/term"
)

// printTable renders a styled table on a terminal and aligned plain text
// everywhere else.
func printTable(w io.Writer, ids []device.Identity) error {
	if isTerminal(w) {
		_, err := fmt.Fprintln(w, styledTable(ids))
		return err
	}

	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "  %-6d %-20s %-20s %s\n", id.Index, id.ClientID, id.Username, id.Password); err != nil {
			return err
		}
	}
	return nil
}

func styledTable(ids []device.Identity) string {
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{strconv.Itoa(id.Index), id.ClientID, id.Username, id.Password})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(zstyle.MutedText).
		Headers("#", "client id", "username", "password").
		Rows(rows...)

	title := zstyle.Title.Render("sensorgen")
	count := zstyle.MutedText.Render(fmt.Sprintf("%d identities", len(ids)))
	return "\n  " + title + "  " + count + "\n" + t.Render()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
