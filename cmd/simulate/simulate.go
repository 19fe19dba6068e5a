package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/edvart/badminton-club/internal/coordinator"
	"github.com/edvart/badminton-club/internal/recorder"
	"github.com/edvart/badminton-club/internal/session"
	"github.com/edvart/badminton-club/internal/store"
)

const winningScore = 21

// simulation plays a club night against a running coordinator.
type simulation struct {
	coord *coordinator.Coordinator
	cfg   Config
	rng   *rand.Rand
	log   *logrus.Entry
	id    string
}

// run wires the store, coordinator and recorder together, restores any
// active sessions, then plays one new session to the end. It returns the
// final session once the recorder has persisted it.
func run(ctx context.Context, cfg Config, db store.Store, log *logrus.Entry) (*session.Session, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	coord := coordinator.New(session.NewEngine(), log)
	events := coord.Subscribe()
	go coord.Run(ctx)

	restored, err := recorder.Load(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := coord.Load(ctx, restored); err != nil {
		return nil, err
	}

	rec := recorder.New(db, log)
	go rec.Run(ctx, events)

	sim := &simulation{
		coord: coord,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		log:   log.WithField("component", "simulate"),
	}
	s, err := sim.play(ctx)
	if err != nil {
		return nil, err
	}
	if err := waitForRecorder(ctx, db, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func (sim *simulation) play(ctx context.Context) (*session.Session, error) {
	s, err := sim.coord.Create(ctx, sim.cfg.SessionName, sim.cfg.Courts, session.Mode(sim.cfg.CourtMode))
	if err != nil {
		return nil, err
	}
	sim.id = s.ID

	for i := 0; i < sim.cfg.Players; i++ {
		gender := session.GenderMale
		if i%2 == 1 {
			gender = session.GenderFemale
		}
		if _, err := sim.do(ctx, session.AddPlayer{Name: fmt.Sprintf("Player %02d", i+1), Gender: gender}); err != nil {
			return nil, err
		}
	}
	if _, err := sim.do(ctx, session.SetBalanceGender{Enabled: sim.cfg.BalanceGender}); err != nil {
		return nil, err
	}

	for round := 1; round <= sim.cfg.Rounds; round++ {
		if err := sim.round(ctx); err != nil {
			return nil, eris.Wrapf(err, "round %d", round)
		}
		s, err = sim.coord.Get(ctx, sim.id)
		if err != nil {
			return nil, err
		}
		low, high := fairness(s)
		sim.log.WithFields(logrus.Fields{"round": round, "games": len(s.Games), "min": low, "max": high}).
			Info("Round finished")
	}

	return sim.do(ctx, session.EndSession{})
}

// round fills every free court, starts every ready game, queues the next
// group for each running court and then finishes the running games.
func (sim *simulation) round(ctx context.Context) error {
	s, err := sim.tolerate(ctx, session.AutoAssignAll{}, session.ErrInsufficientPlayers)
	if err != nil {
		return err
	}
	for _, c := range s.Courts {
		if c.State() != session.CourtReady {
			continue
		}
		if s, err = sim.tolerate(ctx, session.StartGame{CourtIndex: c.Index}, session.ErrPlayerBusyElsewhere); err != nil {
			return err
		}
	}
	for _, c := range s.Courts {
		if !c.InProgress {
			continue
		}
		if s, err = sim.tolerate(ctx, session.AutoAssignNext{CourtIndex: c.Index}, session.ErrInsufficientPlayers); err != nil {
			return err
		}
	}
	for _, c := range s.Courts {
		if !c.InProgress {
			continue
		}
		a, b := sim.score()
		if _, err := sim.do(ctx, session.EndGame{CourtIndex: c.Index, ScoreA: a, ScoreB: b}); err != nil {
			return err
		}
	}
	return nil
}

// score returns a finished rally-point score: one side reaches 21.
func (sim *simulation) score() (float64, float64) {
	loser := float64(sim.rng.Intn(winningScore))
	if sim.rng.Intn(2) == 0 {
		return winningScore, loser
	}
	return loser, winningScore
}

func (sim *simulation) do(ctx context.Context, op session.Operation) (*session.Session, error) {
	s, err := sim.coord.Do(ctx, sim.id, op)
	if err != nil {
		return nil, eris.Wrapf(err, "%s", op.Kind())
	}
	return s, nil
}

// tolerate applies op and treats the given rejection as a no-op.
func (sim *simulation) tolerate(ctx context.Context, op session.Operation, allowed error) (*session.Session, error) {
	s, err := sim.coord.Do(ctx, sim.id, op)
	if errors.Is(err, allowed) {
		sim.log.WithField("op", op.Kind()).Debugf("Skipped: %v", err)
		return s, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s", op.Kind())
	}
	return s, nil
}

func fairness(s *session.Session) (low, high int) {
	for i, p := range s.Players {
		if i == 0 || p.GamesPlayed < low {
			low = p.GamesPlayed
		}
		if p.GamesPlayed > high {
			high = p.GamesPlayed
		}
	}
	return low, high
}

// waitForRecorder blocks until the ended session has reached the store.
func waitForRecorder(ctx context.Context, db store.Store, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		rec, err := db.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if rec != nil && rec.Ended {
			return nil
		}
		select {
		case <-ctx.Done():
			return eris.Wrapf(ctx.Err(), "waiting for session %s to be recorded", sessionID)
		case <-ticker.C:
		}
	}
}
