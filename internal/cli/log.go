package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gzhole/llmsec/internal/config"
	"github.com/gzhole/llmsec/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logFilterStatus string
	logLast         int
	logSummary      bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the audit log",
	Long: `View the project's audit log with filtering and summary options.

Examples:
  llmsec log                       # Show all entries
  llmsec log --last 20             # Show last 20 entries
  llmsec log --status BLOCKED      # Show only blocked commands
  llmsec log --summary             # Show summary stats`,
	Args: cobra.NoArgs,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().StringVar(&logFilterStatus, "status", "", "Filter by status (ALLOWED, BLOCKED, ALLOWED_ASK_DEFERRED, APPROVED_BY_USER, CANCELLED_BY_USER)")
	logCmd.Flags().IntVar(&logLast, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Options{ProjectDir: projectDir, Home: homeDir, ProjectTag: projectTag, Tool: toolHint})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	w := cmd.OutOrStdout()

	records, err := logger.Read(cfg.LogPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read audit log: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No audit log entries found.")
		return nil
	}

	filtered := filterRecords(records, logFilterStatus)
	if logLast > 0 && logLast < len(filtered) {
		filtered = filtered[len(filtered)-logLast:]
	}

	if logSummary {
		printSummary(w, records)
		return nil
	}
	printRecords(w, filtered)
	return nil
}

func filterRecords(records []logger.Record, status string) []logger.Record {
	if status == "" {
		return records
	}
	var filtered []logger.Record
	for _, r := range records {
		if strings.EqualFold(string(r.Status), status) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func printRecords(w io.Writer, records []logger.Record) {
	p := newPalette(w)
	for _, r := range records {
		status := p.status(r.Status).Render(fmt.Sprintf("%-20s", r.Status))
		fmt.Fprintf(w, "%s %s %s %s\n", statusIcon(r.Status), p.subtle.Render(formatTimestamp(r)), status, r.Command)
	}
}

func printSummary(w io.Writer, all []logger.Record) {
	counts := map[logger.Status]int{}
	for _, r := range all {
		counts[r.Status]++
	}

	p := newPalette(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════")
	fmt.Fprintln(w, p.title.Render("  llmsec Audit Summary"))
	fmt.Fprintln(w, "═══════════════════════════════════════════")
	fmt.Fprintf(w, "  Total events:          %d\n", len(all))
	for _, s := range logger.Statuses {
		fmt.Fprintf(w, "  %-22s %d\n", string(s)+":", counts[s])
	}
	fmt.Fprintln(w, "═══════════════════════════════════════════")
	fmt.Fprintf(w, "  First event:     %s\n", formatTimestamp(all[0]))
	fmt.Fprintf(w, "  Last event:      %s\n", formatTimestamp(all[len(all)-1]))

	var blocked []logger.Record
	for _, r := range all {
		if r.Status == logger.StatusBlocked {
			blocked = append(blocked, r)
		}
	}
	if len(blocked) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.danger.Render("  Blocked commands:"))
		limit := len(blocked)
		if limit > 10 {
			limit = 10
		}
		for _, r := range blocked[len(blocked)-limit:] {
			fmt.Fprintf(w, "    %s %s\n", formatTimestamp(r), r.Command)
		}
	}
	fmt.Fprintln(w)
}

func statusIcon(s logger.Status) string {
	switch s {
	case logger.StatusBlocked:
		return "🛑"
	case logger.StatusCancelled:
		return "✋"
	case logger.StatusAskDeferred:
		return "⏭"
	case logger.StatusApproved:
		return "👍"
	case logger.StatusAllowed:
		return "✅"
	default:
		return "❓"
	}
}

func formatTimestamp(r logger.Record) string {
	return r.Timestamp.Local().Format("2006-01-02 15:04:05")
}
