package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/copytrade-hub/pkg/config"
	"github.com/copytrade-hub/pkg/dashboard"
	"github.com/copytrade-hub/pkg/db"
	"github.com/copytrade-hub/pkg/jobs"
	"github.com/copytrade-hub/pkg/leaderboard"
	"github.com/copytrade-hub/pkg/ledger"
	"github.com/copytrade-hub/pkg/metrics"
	"github.com/copytrade-hub/pkg/pricefeed"
	"github.com/copytrade-hub/pkg/realtime"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	log.Info().Msg("📈 CopyTrade Hub starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	store, err := db.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	hub.OnChange(metrics.SetOnlineUsers)

	opts := dashboard.Options{
		Port:             cfg.HTTPPort,
		Hub:              hub,
		Prices:           pricefeed.New(cfg.PythHermesURL, cfg.PythFeedIDs, cfg.HTTPTimeout),
		Stats:            store,
		LeaderboardLimit: cfg.LeaderboardLimit,
		Growth: dashboard.GrowthDefaults{
			StartBalance: cfg.GrowthStartBalance,
			Days:         cfg.GrowthDays,
			MonthlyRate:  cfg.GrowthMonthlyRate,
		},
	}

	// Chain-backed features stay off (503) until an RPC endpoint is set.
	var board *leaderboard.Service
	if cfg.ChainEnabled() {
		client, err := ethclient.DialContext(ctx, cfg.EVMRPCURL)
		if err != nil {
			log.Fatal().Err(err).Str("rpc", cfg.EVMRPCURL).Msg("rpc dial failed")
		}
		defer client.Close()

		board = leaderboard.NewService(client, store, common.HexToAddress(cfg.TradeContractAddress), cfg.LeaderboardStartBlock)
		board.SetConfirmations(cfg.LeaderboardConfirmations)
		opts.Leaderboard = board
		opts.Accounts = ledger.NewReader(client, common.HexToAddress(cfg.VaultContractAddress))
	}

	g, gctx := errgroup.WithContext(ctx)

	if board != nil && cfg.TradeContractAddress != "" {
		sched := jobs.New()
		if err := sched.Register(gctx, "leaderboard", cfg.LeaderboardCron, board); err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
		g.Go(func() error {
			// warm the totals before the first tick
			if _, err := board.Refresh(gctx); err != nil {
				log.Warn().Err(err).Msg("initial leaderboard scan failed")
			}
			return nil
		})
		g.Go(func() error { return sched.Run(gctx) })
	}

	dash := dashboard.New(opts)
	g.Go(func() error { return dash.Run(gctx) })

	printSummary(cfg, store)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("error")
	}
	log.Info().Msg("goodbye 👋")
}

func printSummary(cfg *config.Config, store *db.Store) {
	on := color.New(color.FgGreen).SprintFunc()
	off := color.New(color.FgRed).SprintFunc()
	status := func(ok bool, what string) string {
		if ok {
			return on("✅ " + what)
		}
		return off("❌ disabled")
	}

	stats, _ := store.GetStats()
	bold := color.New(color.Bold)
	fmt.Println("\n" + strings.Repeat("═", 60))
	bold.Println("  📈 COPYTRADE HUB - RUNNING")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("  Dashboard:   http://localhost:%d\n", cfg.HTTPPort)
	fmt.Printf("  Price feed:  %s (%d feeds)\n", cfg.PythHermesURL, len(cfg.PythFeedIDs))
	fmt.Printf("  Leaderboard: %s\n", status(cfg.ChainEnabled() && cfg.TradeContractAddress != "", cfg.TradeContractAddress))
	fmt.Printf("  Vault:       %s\n", status(cfg.ChainEnabled() && cfg.VaultContractAddress != "", cfg.VaultContractAddress))
	fmt.Printf("  Growth:      $%.2f over %d days at %.0f%%/month\n", cfg.GrowthStartBalance, cfg.GrowthDays, cfg.GrowthMonthlyRate*100)
	if stats != nil {
		fmt.Printf("  DB: %d traders tracked\n", stats["trader_pnl"])
	}
	fmt.Println(strings.Repeat("═", 60) + "\n")
}
