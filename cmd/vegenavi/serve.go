package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"VegeNavi/internal/filestore"
	"VegeNavi/internal/notifier"
	"VegeNavi/internal/scheduler"
)

var (
	serveNoEndpoint bool
	notifySuccess   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the handler on a cron schedule and serve the file endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		h, cleanup := buildHandler(cfg, logger)
		defer cleanup()

		var sender scheduler.Sender
		var tn *notifier.TelegramNotifier
		if cfg.Telegram.BotToken != "" {
			tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
			sender = tn
		}

		sched := scheduler.NewScheduler(ctx, h, sender, logger)
		sched.NotifySuccess = notifySuccess
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if tn != nil {
			go tn.StartPolling(ctx, sched.HandleCommand)
			logger.Info("telegram polling started")
		}
		if cfg.Schedule.RunOnStart {
			logger.Info("run_on_start enabled, executing now")
			go sched.RunNow()
		}

		if serveNoEndpoint {
			logger.Info("running without file endpoint")
			<-ctx.Done()
			return nil
		}
		srv := filestore.New(cfg.Server.DataDir, filestore.DefaultPath, logger)
		if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
			logger.Error("file endpoint stopped", zap.Error(err))
			return err
		}
		logger.Info("shutdown signal received, stopping")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoEndpoint, "no-endpoint", false, "do not start the file endpoint")
	serveCmd.Flags().BoolVar(&notifySuccess, "notify-success", false, "also report successful runs to Telegram")
}
