// Command sweeper expires requests whose payment deadline has passed. By
// default it runs one sweep and exits, which suits an external cron or a
// Kubernetes CronJob. With -schedule it keeps running on EXPIRY_SWEEP_SPEC.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"registrar-workflow/internal/adapter/repository/mysql"
	"registrar-workflow/internal/config"
	"registrar-workflow/internal/infrastructure/cache"
	"registrar-workflow/internal/infrastructure/db"
	"registrar-workflow/internal/infrastructure/notify"
	"registrar-workflow/internal/infrastructure/observability"
	"registrar-workflow/internal/infrastructure/scheduler"
	requestUC "registrar-workflow/internal/usecase/request"
	"registrar-workflow/internal/usecase/transition"
	"registrar-workflow/pkg/clock"
)

func main() {
	scheduled := flag.Bool("schedule", false, "keep running and sweep on EXPIRY_SWEEP_SPEC")
	flag.Parse()

	cfg, err := config.LoadValidated()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := observability.NewLogger(os.Stdout, cfg.LogLevel)
	observability.SetGlobal(logger)

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	emit := transition.NewEmitter(notify.NewRedisPublisher(rdb, cfg.EventsChannel), logger)
	svc := requestUC.NewUsecase(mysql.NewRequestRepository(gdb), mysql.NewAuditRepository(gdb),
		mysql.NewGormUoW(gdb), emit, clock.Real{})
	sweeper := scheduler.NewExpirySweeper(svc, cfg.ExpirySweepBatch, cfg.RequestTimeout(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*scheduled {
		n, err := sweeper.RunOnce(ctx)
		logger.Info("sweep done", "expired", n)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	sched, err := scheduler.New(cfg.ExpirySweepSpec, sweeper)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()
	logger.Info("sweeper scheduled", "spec", cfg.ExpirySweepSpec)
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		logger.Error("scheduler shutdown", "error", err.Error())
	}
}
