package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "loan-ledger/internal/adapter/http"
	"loan-ledger/internal/adapter/middleware"
	"loan-ledger/internal/adapter/repository/mysql"
	"loan-ledger/internal/config"
	loanDomain "loan-ledger/internal/domain/loan"
	repayDomain "loan-ledger/internal/domain/repayment"
	"loan-ledger/internal/infrastructure/cache"
	"loan-ledger/internal/infrastructure/db"
	approvalUC "loan-ledger/internal/usecase/approval"
	loanUC "loan-ledger/internal/usecase/loan"
	repaymentUC "loan-ledger/internal/usecase/repayment"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := gdb.AutoMigrate(&loanDomain.Loan{}, &repayDomain.Repayment{}); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	loans := mysql.NewLoanRepository(gdb)
	repayments := mysql.NewRepaymentRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	loanHandler := httpadp.NewLoanHandler(loanUC.NewUsecase(loans, repayments))
	approvalHandler := httpadp.NewApprovalHandler(approvalUC.NewUsecase(tx))
	repaymentHandler := httpadp.NewRepaymentHandler(repaymentUC.NewUsecase(tx))
	h := httpadp.NewHandler()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	e.GET("/health", h.Health)

	e.POST("/loans", loanHandler.CreateLoan)
	e.GET("/loans/:loan_id", loanHandler.GetLoan)
	e.GET("/loans/:loan_id/status", loanHandler.GetStatus)
	e.GET("/loans/:loan_id/schedule", loanHandler.GetSchedule)
	e.GET("/loans/:loan_id/summary", loanHandler.GetSummary)
	e.GET("/loans/:loan_id/next-due", loanHandler.GetNextDue)
	e.GET("/loans/:loan_id/payoff", loanHandler.GetPayoff)
	e.GET("/loans/:loan_id/repayments", loanHandler.ListRepayments)
	e.POST("/loans/:loan_id/approve", approvalHandler.ApproveLoan)
	e.POST("/loans/:loan_id/repayments", repaymentHandler.MakeRepayment)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
