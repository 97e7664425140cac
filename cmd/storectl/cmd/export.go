package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"store-register/internal/models"
	"store-register/internal/report"
)

var (
	exportDate   string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the daily XLSX and/or PDF report to disk",
	Long: `Write Store_<date>.xlsx and/or Store_<date>.pdf for one day.

Example:
  storectl export --date 2026-10-16 --format pdf --out ./reports`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "day to export (YYYY-MM-DD, default today)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "all", "xlsx, pdf or all")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default REPORT_DIR)")
}

func runExport(cmd *cobra.Command, args []string) {
	cfg, store := openStore()
	date, err := resolveDate(exportDate, store.Today())
	exitOnError(err, "invalid --date")

	dir := exportOut
	if dir == "" {
		dir = cfg.ReportDir
	}

	entries, err := store.ListByDate(context.Background(), date)
	exitOnError(err, "failed to load entries")

	files, err := writeReports(entries, date, exportFormat, dir)
	exitOnError(err, "failed to export")
	for _, f := range files {
		fmt.Println(f)
	}
}

// writeReports renders the requested formats into dir and returns the written paths.
func writeReports(entries []models.Entry, date, format, dir string) ([]string, error) {
	var formats []string
	switch format {
	case "xlsx", "pdf":
		formats = []string{format}
	case "all", "":
		formats = []string{"xlsx", "pdf"}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	rows := report.Rows(entries)
	var written []string
	for _, f := range formats {
		var (
			data []byte
			err  error
		)
		if f == "xlsx" {
			data, err = report.XLSX(rows)
		} else {
			data, err = report.PDF(rows, date)
		}
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, report.FileName(date, f))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
