package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"household-planner/internal/bot"
	"household-planner/internal/httpapi"
	"household-planner/internal/service"
	"household-planner/internal/timewindow"
)

const rolloverNudge = time.Hour

func serveCmd() *cobra.Command {
	var noBot bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, noBot)
		},
	}
	cmd.Flags().BoolVar(&noBot, "no-bot", false, "do not start the Telegram bot even if a token is set")
	return cmd
}

func runServe(ctx context.Context, noBot bool) error {
	a, err := loadApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.logger

	if _, err := a.gate.EnsureRolloverRan(ctx); err != nil {
		log.Error().Err(err).Msg("startup rollover failed")
	}

	handler := httpapi.New(log, httpapi.Services{
		Members:  a.members,
		Tasks:    a.tasks,
		Ledger:   a.ledger,
		Insights: a.insights,
		Rollover: a.rollover,
		Gate:     a.gate,
	}, a.cfg.HTTP.AdminPassword)
	router := httpapi.NewRouter(a.cfg.Env, handler, a.metrics.Handler())
	server := httpapi.NewServer(a.cfg.HTTP.Addr, router, a.cfg.HTTP.ShutdownTimeout, log)

	var telegramBot *bot.Bot
	if a.cfg.Telegram.Token != "" && !noBot {
		telegramBot, err = bot.New(a.cfg.Telegram.Token, bot.Services{
			Members:  a.members,
			Tasks:    a.tasks,
			Insights: a.insights,
			Reminder: a.reminder,
			Rollover: a.rollover,
			Gate:     a.gate,
		}, a.cfg, a.clock, log)
		if err != nil {
			return err
		}
	} else {
		log.Info().Msg("telegram bot disabled")
	}

	scheduler, err := schedule(a, telegramBot)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	if telegramBot != nil {
		g.Go(func() error { return telegramBot.Start(gctx) })
	}

	log.Info().Msg("household planner started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

// schedule registers the midnight rollover with an hourly catch-up and,
// with a bot, the daily report.
func schedule(a *app, telegramBot *bot.Bot) (*service.SchedulerService, error) {
	scheduler := service.NewSchedulerService(timewindow.Reference, a.logger)

	rollover := service.Job{
		Name: "rollover",
		Run: func(ctx context.Context) error {
			_, err := a.gate.EnsureRolloverRan(ctx)
			return err
		},
	}
	if _, err := scheduler.ScheduleDaily("00:00", rollover); err != nil {
		return nil, err
	}
	if _, err := scheduler.ScheduleEvery(rolloverNudge, rollover); err != nil {
		return nil, err
	}

	if telegramBot == nil || len(a.cfg.Telegram.ReportChatIDs) == 0 {
		return scheduler, nil
	}
	if _, err := scheduler.ScheduleDaily(a.cfg.Telegram.ReportTime, service.Job{
		Name: "daily-report",
		Run:  telegramBot.SendDailyReports,
	}); err != nil {
		return nil, err
	}
	return scheduler, nil
}
