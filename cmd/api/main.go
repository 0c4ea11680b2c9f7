package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "sarpras-backend/internal/adapter/http"
	"sarpras-backend/internal/adapter/middleware"
	"sarpras-backend/internal/adapter/repository/mysql"
	"sarpras-backend/internal/config"
	"sarpras-backend/internal/infrastructure/cache"
	"sarpras-backend/internal/infrastructure/db"
	approvaluc "sarpras-backend/internal/usecase/approval"
	loanuc "sarpras-backend/internal/usecase/loan"
	markinguc "sarpras-backend/internal/usecase/marking"
	"sarpras-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.Open(cfg.MySQLDSN(), db.DefaultOptions())
	if err != nil {
		logger.Fatal("open mysql", zap.Error(err))
	}
	rdb, err := cache.Open(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("open redis", zap.Error(err))
	}

	uow := mysql.NewGormUoW(gdb)
	notifier := worker.NewLogNotifier(logger)

	loans := loanuc.NewUsecase(uow, notifier, logger, cfg.DefaultMaxBorrowings)
	approvals := approvaluc.NewUsecase(uow, notifier, logger)
	markings := markinguc.NewUsecase(uow, loans, logger, cfg.MarkingDurationDays, cfg.MarkingMaxExtensionDays)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	worker.NewSweeper(markings, logger, cfg.MarkingSweepInterval).Start(sweepCtx)

	h := httpadp.NewHandler()
	loanH := httpadp.NewLoanHandler(loans)
	approvalH := httpadp.NewApprovalHandler(approvals)
	markingH := httpadp.NewMarkingHandler(markings)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	api := e.Group("/api/v1", middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	api.POST("/loans", loanH.CreateLoanRequest)
	api.GET("/loans/:request_id", loanH.GetLoanRequest)
	api.POST("/loans/:request_id/pickup", loanH.ValidatePickup)
	api.POST("/loans/:request_id/return", loanH.ValidateReturn)
	api.POST("/loans/:request_id/cancel", loanH.CancelLoanRequest)

	api.GET("/loans/:request_id/approval-steps", approvalH.ListSteps)
	api.POST("/loans/:request_id/approvals/global", approvalH.DecideGlobal)
	api.POST("/approval-steps/:step_id/decision", approvalH.DecideSpecific)
	api.POST("/approval-steps/:step_id/override", approvalH.OverrideStep)
	api.POST("/approval-steps/:step_id/reset", approvalH.ResetStep)
	api.POST("/approvers/global", approvalH.RegisterGlobalApprover)
	api.POST("/approvers/resource", approvalH.RegisterResourceApprover)

	api.POST("/markings", markingH.CreateMarking)
	api.GET("/markings/:marking_id", markingH.GetMarking)
	api.POST("/markings/:marking_id/extend", markingH.ExtendMarking)
	api.POST("/markings/:marking_id/convert", markingH.ConvertMarking)
	api.POST("/markings/:marking_id/cancel", markingH.CancelMarking)

	addr := ":" + cfg.AppPort
	logger.Info("listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
