package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"board/internal/logging"
	"board/simulator"
)

func main() {
	config := simulator.DefaultSimConfig()
	flag.IntVar(&config.NumUsers, "users", config.NumUsers, "number of simulated users")
	flag.IntVar(&config.Rounds, "rounds", config.Rounds, "actions per user")
	flag.IntVar(&config.NumWorkers, "workers", config.NumWorkers, "registration workers")
	flag.StringVar(&config.EngineURL, "url", config.EngineURL, "board server URL")
	duration := flag.Duration("duration", 5*time.Minute, "overall time limit")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	logging.Setup(*debug)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sim := simulator.NewSimulator(config)
	result, err := sim.Run(ctx)
	if err != nil {
		slog.Error("Simulation failed", "error", err)
		os.Exit(1)
	}

	stats := sim.Stats()
	slog.Info("Final metrics",
		"requests", stats.TotalRequests,
		"failed", stats.FailedRequests,
		"votes", stats.Votes,
		"likeToggles", stats.LikeToggles,
		"reports", stats.Reports)

	if !result.Consistent(config.NumUsers) {
		slog.Error("Consistency check failed", "result", result)
		os.Exit(1)
	}
	slog.Info("Consistency check passed")
}
