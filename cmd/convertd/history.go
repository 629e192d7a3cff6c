// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/convertd/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent requests from the server's history database",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("db", "", "path to the history database")
	historyCmd.Flags().Int("limit", 20, "number of records to show")
	historyCmd.Flags().Bool("json", false, "output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("server.history_db")
	}
	if path == "" {
		return fmt.Errorf("no history database configured (use --db or server.history_db)")
	}

	store, err := history.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryOutput(records, jsonOutput)
}

func formatHistoryOutput(records []history.Record, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No requests recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-8s  %-10s  %-10s  %-10s  %s\n",
		"Time", "Operation", "Status", "In", "Out", "Duration", "Error")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range records {
		errText := r.Error
		if len(errText) > 40 {
			errText = errText[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-8s  %-10s  %-10s  %-10s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Op, r.Status,
			formatBytes(r.InputBytes), formatBytes(r.OutputBytes),
			r.Duration.Round(time.Millisecond), errText)
	}

	fmt.Fprintf(os.Stdout, "\n%d requests\n", len(records))
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
