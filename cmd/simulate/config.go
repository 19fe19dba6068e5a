package main

import (
	"strings"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/edvart/badminton-club/internal/session"
)

type Config struct {
	DatabasePath  string `config:"DATABASE_PATH"`
	SessionName   string `config:"SESSION_NAME"`
	Players       int    `config:"PLAYERS"`
	Courts        int    `config:"COURTS"`
	CourtMode     string `config:"COURT_MODE"`
	Rounds        int    `config:"ROUNDS"`
	Seed          int64  `config:"SEED"`
	BalanceGender bool   `config:"BALANCE_GENDER"`
	LogLevel      string `config:"LOG_LEVEL"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath: "./data/club.db",
		SessionName:  "Club night",
		Players:      14,
		Courts:       3,
		CourtMode:    string(session.ModeDoubles),
		Rounds:       8,
		Seed:         1,
		LogLevel:     "info",
	}
}

// LoadConfig overlays the environment on the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to read environment")
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return eris.New("DATABASE_PATH must not be empty")
	}
	if !session.Mode(c.CourtMode).Valid() {
		return eris.Errorf("COURT_MODE must be %q or %q, got %q", session.ModeSingles, session.ModeDoubles, c.CourtMode)
	}
	if c.Courts < 1 {
		return eris.Errorf("COURTS must be at least 1, got %d", c.Courts)
	}
	if c.Players < 0 {
		return eris.Errorf("PLAYERS must not be negative, got %d", c.Players)
	}
	if c.Rounds < 0 {
		return eris.Errorf("ROUNDS must not be negative, got %d", c.Rounds)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrap(err, "LOG_LEVEL")
	}
	return nil
}

func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
