package session

import "github.com/edvart/badminton-club/internal/pairing"

// AutoAssignCourt fills the free spots on an idle court with the best
// available players and splits everyone on it into teams.
type AutoAssignCourt struct {
	CourtIndex int
}

func (op AutoAssignCourt) Kind() string { return "auto_assign_court" }

func (op AutoAssignCourt) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	return fillCourt(s, court)
}

// AutoAssignAll fills every court that is not in progress, in index order.
// It succeeds when at least one court changed.
type AutoAssignAll struct{}

func (op AutoAssignAll) Kind() string { return "auto_assign_all" }

func (op AutoAssignAll) apply(_ *Engine, s *Session) error {
	filled := 0
	for i := range s.Courts {
		court := &s.Courts[i]
		if court.InProgress || court.Full() {
			continue
		}
		if err := fillCourt(s, court); err != nil {
			continue
		}
		filled++
	}
	if filled == 0 {
		return reject(ErrInsufficientPlayers, "no court could be filled")
	}
	return nil
}

// AutoAssignNext stages the best group for a court's next game in its queue,
// typically while the current game is still running.
type AutoAssignNext struct {
	CourtIndex int
}

func (op AutoAssignNext) Kind() string { return "auto_assign_next" }

func (op AutoAssignNext) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	capacity := court.Mode.Capacity()
	pool := nextPool(s, court)
	if len(pool) < capacity {
		return reject(ErrInsufficientPlayers, "%d eligible for %d spots", len(pool), capacity)
	}
	choice, ok := pairing.Select(pairing.Request{
		Pool:          pool,
		Need:          capacity,
		PerTeam:       court.Mode.PerTeam(),
		History:       historyOf(s, true),
		Blacklist:     blacklistOf(s),
		BalanceGender: s.AutoAssignConfig.BalanceGender,
	})
	if !ok {
		return reject(ErrInsufficientPlayers, "court %d", op.CourtIndex)
	}
	court.Queue = choice.Selected
	court.NextA = choice.A
	court.NextB = choice.B
	return nil
}

func fillCourt(s *Session, court *Court) error {
	if court.InProgress {
		return reject(ErrCourtLocked, "court %d", court.Index)
	}
	need := court.Mode.Capacity() - len(court.PlayerIDs)
	if need <= 0 {
		return reject(ErrCapacityExceeded, "court %d is full", court.Index)
	}
	pool := immediatePool(s)
	if len(pool) == 0 {
		return reject(ErrInsufficientPlayers, "no eligible players for court %d", court.Index)
	}
	need = min(need, len(pool))

	fixed := make([]pairing.Candidate, 0, len(court.PlayerIDs))
	for _, id := range court.PlayerIDs {
		if p := s.Player(id); p != nil {
			fixed = append(fixed, candidateOf(*p))
		}
	}
	choice, ok := pairing.Select(pairing.Request{
		Pool:          pool,
		Fixed:         fixed,
		FixedA:        court.PairA,
		FixedB:        court.PairB,
		Need:          need,
		PerTeam:       court.Mode.PerTeam(),
		History:       historyOf(s, false),
		Blacklist:     blacklistOf(s),
		BalanceGender: s.AutoAssignConfig.BalanceGender,
	})
	if !ok {
		return reject(ErrInsufficientPlayers, "court %d", court.Index)
	}
	court.PlayerIDs = append(court.PlayerIDs, choice.Selected...)
	court.PairA = choice.A
	court.PairB = choice.B
	return nil
}

// immediatePool is everyone not staged on any court and not excluded.
// Players on a running court are staged there, so they never qualify.
func immediatePool(s *Session) []pairing.Candidate {
	pool := make([]pairing.Candidate, 0, len(s.Players))
	for _, p := range s.Players {
		if s.CourtOf(p.ID) != nil || s.Excluded(p.ID) {
			continue
		}
		pool = append(pool, candidateOf(p))
	}
	return pool
}

// nextPool is everyone not excluded, not staged on this court or an idle
// one, and not queued on another court. Players in a game running on
// another court may be queued for their next one.
func nextPool(s *Session, court *Court) []pairing.Candidate {
	pool := make([]pairing.Candidate, 0, len(s.Players))
	for _, p := range s.Players {
		if s.Excluded(p.ID) {
			continue
		}
		if c := s.CourtOf(p.ID); c != nil && (!c.InProgress || c.Index == court.Index) {
			continue
		}
		if q := s.QueuedOn(p.ID); q != nil && q.Index != court.Index {
			continue
		}
		pool = append(pool, candidateOf(p))
	}
	return pool
}

// historyOf converts recorded games, newest first. With pending set, games
// still running are prepended so their players count as having just played
// together.
func historyOf(s *Session, pending bool) *pairing.History {
	records := make([]pairing.Record, 0, len(s.Games)+len(s.Courts))
	if pending {
		for _, c := range s.Courts {
			if c.InProgress {
				records = append(records, pairing.Record{Players: cloneIDs(c.PlayerIDs)})
			}
		}
	}
	for _, g := range s.Games {
		records = append(records, pairing.Record{Players: g.Participants(), Voided: g.Voided})
	}
	return pairing.NewHistory(records)
}

func candidateOf(p Player) pairing.Candidate {
	return pairing.Candidate{
		ID:          p.ID,
		Name:        p.Name,
		Gender:      string(p.Gender),
		GamesPlayed: p.GamesPlayed,
	}
}
