package app

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
	media_service "github.com/oshokin/vidstash/internal/service/media"
)

// maxTitleWidth keeps the table readable in a regular terminal.
const maxTitleWidth = 40

// ExecuteListCommand prints the combined view of the library.
func ExecuteListCommand(ctx context.Context, cfg *config.Config, opts RuntimeOptions, out io.Writer) {
	if err := listLibrary(ctx, cfg, opts, out); err != nil {
		logger.Fatalf(ctx, "Failed to list the video library: %v", err)
	}
}

func listLibrary(ctx context.Context, cfg *config.Config, opts RuntimeOptions, out io.Writer) error {
	appRuntime, err := NewRuntime(cfg, opts)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := appRuntime.Close(ctx); closeErr != nil {
			logger.Warnf(ctx, "Failed to shut down cleanly: %v", closeErr)
		}
	}()

	if _, err = appRuntime.Coordinator().LoadLibrary(ctx); err != nil {
		return err
	}

	views := appRuntime.Coordinator().Items()

	_, err = fmt.Fprintf(out, "\nLibrary (%d videos)\n\n%s\n", len(views), renderLibrary(views))

	return err
}

// renderLibrary formats views as a table.
func renderLibrary(views []media_service.ItemView) string {
	var (
		headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		doneStyle   = cellStyle.Foreground(lipgloss.Color("42"))
		failedStyle = cellStyle.Foreground(lipgloss.Color("196"))
	)

	rows := make([][]string, 0, len(views))
	for _, view := range views {
		rows = append(rows, []string{
			view.Item.ID,
			truncateString(view.Item.Title, maxTitleWidth),
			view.Record.Status.String(),
			fmt.Sprintf("%d%%", view.Record.Progress),
			view.URI,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "TITLE", "STATUS", "PROGRESS", "URI").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			const statusColumn = 2

			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col != statusColumn:
				return cellStyle
			case views[row].Record.Status == media_service.DownloadStatusCompleted:
				return doneStyle
			case views[row].Record.Status == media_service.DownloadStatusFailed:
				return failedStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// truncateString shortens s to at most maxLen runes, marking the cut with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	return string(runes[:maxLen-1]) + "…"
}
