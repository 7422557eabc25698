package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"gas-arena/internal/api"
	"gas-arena/internal/config"
	"gas-arena/internal/game"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  GAS ARENA - MATCH SERVER")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	match, err := config.LoadMatchFile(appConfig.MatchFile, config.DefaultMatch(appConfig.Gas, appConfig.Spawn))
	if err != nil {
		log.Fatalf("❌ Match file: %v", err)
	}
	if appConfig.MatchFile != "" {
		log.Printf("🗺️ Match file: %s", appConfig.MatchFile)
	}
	log.Printf("🎮 Config: %v per tick, %.0fx%.0f map, %d max players, gas %s, spawn %s",
		appConfig.Game.TickPeriod, appConfig.Game.MapWidth, appConfig.Game.MapHeight,
		appConfig.Server.MaxPlayers, match.Gas.Mode, match.Spawn.Mode)

	g := game.New(appConfig.Game, match)
	log.Printf("🎮 Match %s (seed %d)", g.MatchID(), g.Seed())

	if err := g.Events().Start(appConfig.Debug.EventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if appConfig.Debug.EventLogPath != "" {
		log.Printf("📝 Event log: %s", appConfig.Debug.EventLogPath)
	}
	defer g.Events().Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// One match per process. A finished match exits non-zero.
	var ended atomic.Bool
	g.OnEnd(func() {
		ended.Store(true)
		cancel()
	})

	loop := game.NewLoop(appConfig.Game.TickPeriod, appConfig.Game.TickSampleWindow, g.Tick)
	server := api.NewServer(appConfig.Server, g)
	debug := api.NewDebugServer(appConfig.Debug)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return loop.Run(gctx)
	})
	group.Go(func() error {
		return server.Run(gctx)
	})
	group.Go(func() error {
		return api.RunDebugServer(gctx, debug)
	})

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("❌ Server error: %v", err)
		g.Events().Stop()
		os.Exit(1)
	}
	if ended.Load() {
		log.Println("🏁 Match ended, shutting down")
		g.Events().Stop()
		os.Exit(1)
	}
	log.Println("🛑 Shut down")
}
