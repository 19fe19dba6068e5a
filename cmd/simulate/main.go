// Command simulate plays a seeded club night through the coordinator and
// records it to SQLite.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/edvart/badminton-club/internal/codec"
	"github.com/edvart/badminton-club/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.NewEntry(logger)

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.Level())

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := run(ctx, cfg, db, log)
	if err != nil {
		log.Errorf("Simulation failed: %+v", err)
		return
	}

	summary := codec.Summarize(s)
	log.WithFields(logrus.Fields{"session": s.ID, "games": summary.Games, "voided": summary.Voided}).
		Infof("Session %s finished", s.Name)
	for _, p := range summary.Players {
		log.Infof("%-10s games=%d wins=%d losses=%d points=%d-%d",
			p.Name, p.Games, p.Wins, p.Losses, p.PointsFor, p.PointsAgainst)
	}

	board, err := db.GetLeaderboard(ctx, nil, nil)
	if err != nil {
		log.Errorf("Failed to load leaderboard: %v", err)
		return
	}
	log.Infof("Leaderboard across %d players", len(board))
	for i, e := range board {
		if i == 5 {
			break
		}
		log.Infof("%d. %s wins=%d total=%d rate=%.0f%% streak=%d", i+1, e.Name, e.Wins, e.Total, e.WinRate, e.Streak)
	}
}
