package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/quadra-imoveis/quadra/internal/app"
	"github.com/quadra-imoveis/quadra/internal/email"
	jobmetrics "github.com/quadra-imoveis/quadra/internal/jobs"
	"github.com/quadra-imoveis/quadra/internal/platform/db"
	"github.com/quadra-imoveis/quadra/internal/shared"
	"github.com/quadra-imoveis/quadra/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	sender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, logger)
	mailJob := jobs.NewMailJob(sender, cfg.FrontendURL, logger, metrics)

	securityLogs := shared.NewSecurityLogger(pool)
	trimJob := jobs.NewSecurityLogTrimJob(securityLogs, cfg.SecurityLogRetention, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMailVerification, Handler: mailJob.Handle},
			{Type: jobs.TaskMailWelcome, Handler: mailJob.Handle},
			{Type: jobs.TaskMailPasswordReset, Handler: mailJob.Handle},
			{Type: jobs.TaskSecurityLogTrim, Handler: trimJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewSecurityLogTrimTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
