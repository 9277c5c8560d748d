package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"blockpay/internal/adapter/repo"
	"blockpay/internal/domain"
	"blockpay/internal/events"
	"blockpay/internal/http/handlers"
	"blockpay/internal/http/httpapi"
	"blockpay/internal/infra"
	"blockpay/internal/ledger"
	"blockpay/internal/pricefeed"
	"blockpay/internal/registry"
	"blockpay/internal/treasury"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		planStore   domain.PlanStore
		ledgerStore domain.LedgerStore
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		if err := repo.EnsureSchema(ctx, dbpool); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure schema")
		}
		planStore = repo.NewPlanRepository(dbpool)
		ledgerStore = repo.NewLedgerRepository(dbpool)
		logger.Info().Msg("using postgres stores")
	} else {
		planStore = repo.NewPlanStoreMem()
		ledgerStore = repo.NewLedgerStoreMem()
		logger.Warn().Msg("DATABASE_URL not set; using in-memory stores")
	}

	// Price oracle: remote feed when configured, fixed price otherwise.
	var feed pricefeed.Feed
	if cfg.PriceFeedURL != "" {
		feed, err = pricefeed.NewClient(cfg.PriceFeedURL, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid price feed url")
		}
	} else {
		price, ok := new(big.Int).SetString(cfg.PriceFeedStatic, 10)
		if !ok {
			logger.Fatal().Str("value", cfg.PriceFeedStatic).Msg("invalid static price")
		}
		feed = pricefeed.NewStatic(price, uint8(cfg.PriceFeedDecimals))
		logger.Warn().Str("price", price.String()).Msg("PRICE_FEED_URL not set; using static price")
	}

	// Treasury: the funds-out side of withdrawals.
	var transferer treasury.Transferrer
	if cfg.TreasuryURL != "" {
		client, err := treasury.NewClient(cfg.TreasuryURL, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid treasury url")
		}
		transferer = client
	} else {
		transferer = treasury.Logging{Logger: logger}
		logger.Warn().Msg("TREASURY_URL not set; withdrawals move no value")
	}

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer publisher.Close()
	}

	reg := registry.New(planStore, logger)
	led := ledger.New(reg, ledgerStore, feed, transferer, publisher, logger)
	app := handlers.NewApp(reg, led, logger)

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
