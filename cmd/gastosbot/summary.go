package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jmorales/gastosbot/internal/cli"
	"github.com/jmorales/gastosbot/internal/config"
	"github.com/jmorales/gastosbot/internal/ledger"
	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/money"
	"github.com/jmorales/gastosbot/internal/service"
)

// summaryBarWidth is the block count of the category bars, matching the
// bars the bot sends in chat.
const summaryBarWidth = 8

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the month's ledger summary",
		Long: `Display the current month's income, expenses and balance for one
user, followed by the category breakdown over a trailing window.

This is the same report /resumen produces in chat, rendered for the
terminal.`,
		RunE: runSummary,
	}

	// Flags
	cmd.Flags().Int64("user", 0, "Telegram user ID whose ledger to summarize")
	cmd.Flags().Int("days", 30, "Trailing window in days for the category breakdown")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetInt64("user")
	days, _ := cmd.Flags().GetInt("days")

	loc, err := config.LoadLocation()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	blobs, err := initBlobStore(ctx)
	if err != nil {
		return err
	}

	logger := slog.Default()
	led := ledger.New(store, initMirror(logger), blobs, logger)

	now := time.Now().In(loc)
	summary, err := led.MonthSummary(ctx, userID, now)
	if err != nil {
		return fmt.Errorf("failed to load month summary: %w", err)
	}
	today, err := led.TotalOn(ctx, userID, model.KindExpense, now)
	if err != nil {
		return fmt.Errorf("failed to load today's total: %w", err)
	}
	breakdown, err := led.CategoryBreakdown(ctx, userID, now, days)
	if err != nil {
		return fmt.Errorf("failed to load category breakdown: %w", err)
	}

	subtitle := fmt.Sprintf("%s · usuario %d", now.Format("01/2006"), userID)
	fmt.Println(cli.FormatTitle("Resumen del Mes"))    //nolint:forbidigo // User-facing output
	fmt.Println(cli.SubtitleStyle.Render(subtitle))    //nolint:forbidigo // User-facing output

	if err := printTotals(summary, today); err != nil {
		return err
	}

	printBreakdown(summary, breakdown, days)

	return nil
}

func printTotals(summary service.MonthSummary, today decimal.Decimal) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "  %s\t%s\n",
		"Ingresos",
		cli.IncomeStyle.Render("$"+money.Format(summary.Income))); err != nil {
		return fmt.Errorf("failed to write income row: %w", err)
	}
	if _, err := fmt.Fprintf(w, "  %s\t%s\n",
		"Gastos",
		cli.ExpenseStyle.Render("$"+money.Format(summary.Expenses))); err != nil {
		return fmt.Errorf("failed to write expense row: %w", err)
	}

	balanceStyle := cli.SuccessStyle
	if summary.Balance().IsNegative() {
		balanceStyle = cli.ErrorStyle
	}
	if _, err := fmt.Fprintf(w, "  %s\t%s\n",
		cli.BoldStyle.Render("Balance"),
		balanceStyle.Render("$"+money.Format(summary.Balance()))); err != nil {
		return fmt.Errorf("failed to write balance row: %w", err)
	}
	if _, err := fmt.Fprintf(w, "  %s\t%s\n",
		"Ahorro",
		fmt.Sprintf("%.1f%%", summary.SavingsRate())); err != nil {
		return fmt.Errorf("failed to write savings row: %w", err)
	}
	if _, err := fmt.Fprintf(w, "  %s\t%s\n",
		"Hoy",
		cli.ExpenseStyle.Render("$"+money.Format(today))); err != nil {
		return fmt.Errorf("failed to write today row: %w", err)
	}

	return nil
}

func printBreakdown(summary service.MonthSummary, breakdown []service.CategoryTotal, days int) {
	fmt.Println() //nolint:forbidigo // User-facing output

	if len(breakdown) == 0 {
		fmt.Println(cli.SubtleStyle.Render("Sin gastos registrados en la ventana.")) //nolint:forbidigo // User-facing output
		return
	}

	fmt.Println(cli.BoldStyle.Render(fmt.Sprintf("%s Gastos por categoría (últimos %d días)", cli.ChartIcon, days))) //nolint:forbidigo // User-facing output

	largest := breakdown[0].Total
	for _, ct := range breakdown {
		filled := ct.BarLength(largest, summaryBarWidth)
		bar := cli.BarStyle.Render(strings.Repeat("█", filled)) +
			cli.SubtleStyle.Render(strings.Repeat("░", summaryBarWidth-filled))

		fmt.Printf("  %s %-24s %10s %s\n", //nolint:forbidigo // User-facing output
			bar,
			ct.Category,
			"$"+money.Format(ct.Total),
			cli.SubtleStyle.Render(fmt.Sprintf("(%.0f%%)", ct.Percent(summary.Expenses))))
	}
}
