package main

import (
	"context"
	"log"
	"time"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/adapter/repository/postgres"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/config"
	"github.com/Tosmel2/Mini-Core-Banking/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	loanRepo := postgres.NewLoanRepository(db)
	repaymentRepo := postgres.NewLoanRepaymentRepository(db)

	ledgerService := services.NewLedgerService(accountRepo, ledgerRepo)
	accountService := services.NewAccountService(accountRepo, transactionRepo, cfg.DefaultCurrency)
	loanService := services.NewLoanService(loanRepo, accountRepo, repaymentRepo, ledgerService)

	log.Printf("core banking engine initialised: ledger=%T accounts=%T loans=%T currency=%s",
		ledgerService, accountService, loanService, cfg.DefaultCurrency)
}
