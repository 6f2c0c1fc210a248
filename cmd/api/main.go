package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nulln0ne/dex-amm/internal/config"
	"github.com/nulln0ne/dex-amm/internal/eth"
	"github.com/nulln0ne/dex-amm/internal/handler"
	"github.com/nulln0ne/dex-amm/internal/journal"
	"github.com/nulln0ne/dex-amm/internal/ledger"
	"github.com/nulln0ne/dex-amm/internal/logging"
	"github.com/nulln0ne/dex-amm/internal/pool"
	"github.com/nulln0ne/dex-amm/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	app := fiber.New()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deployment := eth.Deploy(cfg.Deployer, 0)
	tokenA := ledger.NewToken(cfg.TokenA.Name, cfg.TokenA.Symbol, deployment.TokenA)
	tokenB := ledger.NewToken(cfg.TokenB.Name, cfg.TokenB.Symbol, deployment.TokenB)
	for _, tok := range []*ledger.Token{tokenA, tokenB} {
		if err := tok.Mint(cfg.Deployer, cfg.InitialSupply); err != nil {
			return fmt.Errorf("failed to mint %s: %w", tok.Symbol(), err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []pool.Option{pool.WithMetrics(pool.NewMetrics(registry))}
	var events *journal.Journal
	if cfg.EventDB != "" {
		events, err = journal.Open(cfg.EventDB, logger)
		if err != nil {
			return err
		}
		defer events.Close()
		opts = append(opts, pool.WithEventSink(events))
	}

	engine := pool.New(logger, deployment.Pool,
		ledger.NewVault(tokenA, deployment.Pool),
		ledger.NewVault(tokenB, deployment.Pool),
		opts...)
	logger.Info("pool deployed",
		"deployer", cfg.Deployer.Hex(),
		"token_a", tokenA.Address().Hex(),
		"token_b", tokenB.Address().Hex(),
		"pool", engine.Address().Hex(),
		"supply", cfg.InitialSupply.Dec(),
		"journal", cfg.EventDB != "")

	poolService := service.NewPoolService(logger, engine, tokenA, tokenB)
	handler.Register(app, logger, poolService, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	return nil
}
