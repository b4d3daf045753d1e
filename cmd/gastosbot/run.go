package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmorales/gastosbot/internal/bot"
	"github.com/jmorales/gastosbot/internal/config"
	"github.com/jmorales/gastosbot/internal/ledger"
	"github.com/jmorales/gastosbot/internal/recurring"
	"github.com/jmorales/gastosbot/internal/telegram"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot",
		Long: `Start the Telegram bot and keep it running until interrupted.

This long-polls Telegram for messages, posts due recurring movements
once a day at the configured time, and mirrors every committed entry
to the spreadsheet when one is configured.`,
		RunE: runRun,
	}

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	tgCfg, err := config.LoadTelegram()
	if err != nil {
		return err
	}
	loc, err := config.LoadLocation()
	if err != nil {
		return err
	}
	trigger, err := config.LoadRecurring()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("failed to close storage", "error", closeErr)
		}
	}()

	blobs, err := initBlobStore(ctx)
	if err != nil {
		return err
	}

	mirror := initMirror(logger)
	led := ledger.New(store, mirror, blobs, logger)
	// In-flight mirror syncs get to finish before the store closes.
	defer led.Wait()

	tg, err := telegram.New(tgCfg.Token, logger)
	if err != nil {
		return err
	}

	gastos := bot.New(store, led, blobs, tg, tgCfg.AuthorizedUsers, logger)
	engine := recurring.NewEngine(store, led, logger)

	applyDue := func() {
		applied, applyErr := engine.ApplyDue(ctx, time.Now().In(loc))
		if applyErr != nil {
			logger.Error("Recurring rule run failed", "error", applyErr)
			return
		}
		gastos.NotifyApplied(ctx, applied)
	}

	// Catch up on anything due today that a downtime window skipped; the
	// month stamp makes repeating this harmless.
	applyDue()

	scheduler := cron.New(cron.WithLocation(loc))
	if _, err := scheduler.AddFunc(trigger.CronSpec(), applyDue); err != nil {
		return fmt.Errorf("failed to schedule recurring job: %w", err)
	}
	scheduler.Start()

	logger.Info("Bot is running",
		"authorized_users", len(tgCfg.AuthorizedUsers),
		"recurring_at", fmt.Sprintf("%02d:%02d", trigger.Hour, trigger.Minute),
		"timezone", loc.String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tg.Poll(ctx, tgCfg.PollTimeout, gastos)
	})
	g.Go(func() error {
		<-ctx.Done()
		// Wait out any recurring run that is mid-flight.
		<-scheduler.Stop().Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Bot stopped")
	return nil
}
