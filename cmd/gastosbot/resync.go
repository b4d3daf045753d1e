package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jmorales/gastosbot/internal/cli"
	"github.com/jmorales/gastosbot/internal/config"
	"github.com/jmorales/gastosbot/internal/ledger"
	"github.com/jmorales/gastosbot/internal/sheets"
)

func resyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Rebuild the spreadsheet mirror from the ledger",
		Long: `Re-append every transaction for a user to the spreadsheet mirror,
oldest first.

Mirroring is best-effort during normal operation, so rows can go
missing while the spreadsheet is unreachable. This replays the whole
ledger into the sheet. It does not clear existing rows first; point it
at a fresh worksheet or remove stale rows yourself.`,
		RunE: runResync,
	}

	// Flags
	cmd.Flags().Int64("user", 0, "Telegram user ID whose ledger to replay")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runResync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID, _ := cmd.Flags().GetInt64("user")

	// Unlike the bot, resync exists only to write the sheet, so a missing
	// or broken mirror configuration is fatal here.
	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return err
	}
	mirror, err := sheets.NewMirror(*sheetsCfg, slog.Default())
	if err != nil {
		return err
	}
	if !mirror.Enabled() {
		return fmt.Errorf("spreadsheet mirror is not configured; set sheets.spreadsheet_id first")
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

	txns, err := store.AllTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(txns) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No transactions to replay.")) //nolint:forbidigo // User-facing output
		return nil
	}

	bar := progressbar.NewOptions(len(txns),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Replaying ledger...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, writeErr := fmt.Fprintln(os.Stderr); writeErr != nil {
				slog.Warn("Failed to write newline after progress bar", "error", writeErr)
			}
		}),
	)

	for i := range txns {
		if err := mirror.Append(ctx, ledger.MirrorRowFor(txns[i])); err != nil {
			// Stop rather than leave holes in the middle of the sheet.
			return fmt.Errorf("failed after %d of %d rows: %w", i, len(txns), err)
		}
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Mirrored %d transactions to the spreadsheet", len(txns)))) //nolint:forbidigo // User-facing output

	return nil
}
