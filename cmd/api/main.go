package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadp "registrar-workflow/internal/adapter/http"
	appmw "registrar-workflow/internal/adapter/middleware"
	"registrar-workflow/internal/adapter/repository/mysql"
	"registrar-workflow/internal/config"
	"registrar-workflow/internal/infrastructure/cache"
	"registrar-workflow/internal/infrastructure/db"
	"registrar-workflow/internal/infrastructure/notify"
	"registrar-workflow/internal/infrastructure/observability"
	"registrar-workflow/internal/infrastructure/scheduler"
	claimUC "registrar-workflow/internal/usecase/claim"
	paymentUC "registrar-workflow/internal/usecase/payment"
	requestUC "registrar-workflow/internal/usecase/request"
	"registrar-workflow/internal/usecase/transition"
	"registrar-workflow/pkg/clock"
)

const serviceName = "registrar-workflow"

var version = "dev"

func main() {
	cfg, err := config.LoadValidated()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel)
	observability.SetGlobal(logger)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := db.Migrate(gdb, mysql.Models()...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	// usecases
	clk := clock.Real{}
	requests := mysql.NewRequestRepository(gdb)
	tx := mysql.NewGormUoW(gdb)
	emit := transition.NewEmitter(notify.NewRedisPublisher(rdb, cfg.EventsChannel), logger)

	requestSvc := requestUC.NewUsecase(requests, mysql.NewAuditRepository(gdb), tx, emit, clk)
	requestSvc.PaymentWindow = cfg.PaymentWindow()
	paymentSvc := paymentUC.NewUsecase(mysql.NewPaymentRepository(gdb), requests, tx, emit, clk)
	claimSvc := claimUC.NewUsecase(tx, emit, clk)

	// http
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	e.Use(middleware.ContextTimeout(cfg.RequestTimeout()))
	e.Use(appmw.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL()))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health:   httpadp.NewHandler(sqlDB),
		Requests: httpadp.NewRequestHandler(requestSvc),
		Payments: httpadp.NewPaymentHandler(paymentSvc),
		Claims:   httpadp.NewClaimHandler(claimSvc),
	})

	// payment deadline sweep
	sweeper := scheduler.NewExpirySweeper(requestSvc, cfg.ExpirySweepBatch, cfg.RequestTimeout(), logger)
	sched, err := scheduler.New(cfg.ExpirySweepSpec, sweeper)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()

	addr := ":" + cfg.AppPort
	go func() {
		logger.Info("listening", "addr", addr, "driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err.Error())
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown", "error", err.Error())
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", "error", err.Error())
	}
	_ = rdb.Close()
	_ = sqlDB.Close()
}
