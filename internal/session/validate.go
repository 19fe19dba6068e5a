package session

import "github.com/rotisserie/eris"

// Validate checks the structural invariants of a session: unique players,
// contiguous court indexes, team and queue membership, capacity limits, and
// that no player is staged on two courts. It returns the first violation.
func (s *Session) Validate() error {
	seen := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID == "" {
			return eris.New("player with empty id")
		}
		if seen[p.ID] {
			return eris.Errorf("duplicate player %s", p.ID)
		}
		seen[p.ID] = true
		if p.GamesPlayed < 0 {
			return eris.Errorf("player %s has negative games played", p.ID)
		}
	}

	staged := make(map[string]int)
	for i, c := range s.Courts {
		if c.Index != i {
			return eris.Errorf("court at position %d has index %d", i, c.Index)
		}
		if !c.Mode.Valid() {
			return eris.Errorf("court %d has invalid mode %q", i, c.Mode)
		}
		if err := c.validate(seen); err != nil {
			return eris.Wrapf(err, "court %d", i)
		}
		for _, id := range c.PlayerIDs {
			if other, ok := staged[id]; ok {
				return eris.Errorf("player %s staged on courts %d and %d", id, other, i)
			}
			staged[id] = i
		}
	}

	for _, id := range s.AutoAssignExclude {
		if !seen[id] {
			return eris.Errorf("excluded player %s does not exist", id)
		}
	}
	for _, g := range s.Games {
		if g.ID == "" {
			return eris.New("game with empty id")
		}
		switch g.Winner {
		case WinnerA, WinnerB, WinnerDraw:
		default:
			return eris.Errorf("game %s has invalid winner %q", g.ID, g.Winner)
		}
	}
	if s.Ended && s.EndedAt == nil {
		return eris.New("ended session without end time")
	}
	return nil
}

func (c Court) validate(players map[string]bool) error {
	capacity, per := c.Mode.Capacity(), c.Mode.PerTeam()
	if len(c.PlayerIDs) > capacity {
		return eris.Errorf("%d players staged, capacity %d", len(c.PlayerIDs), capacity)
	}
	if len(c.Queue) > capacity {
		return eris.Errorf("%d players queued, capacity %d", len(c.Queue), capacity)
	}
	if len(c.PairA) > per || len(c.PairB) > per {
		return eris.Errorf("teams of %d and %d exceed %d", len(c.PairA), len(c.PairB), per)
	}
	if err := uniqueKnown(c.PlayerIDs, players); err != nil {
		return eris.Wrap(err, "staged players")
	}
	if err := uniqueKnown(c.Queue, players); err != nil {
		return eris.Wrap(err, "queue")
	}
	for _, id := range append(cloneIDs(c.PairA), c.PairB...) {
		if !contains(c.PlayerIDs, id) {
			return eris.Errorf("team member %s is not staged", id)
		}
	}
	for _, id := range c.PairA {
		if contains(c.PairB, id) {
			return eris.Errorf("player %s on both teams", id)
		}
	}
	for _, id := range append(cloneIDs(c.NextA), c.NextB...) {
		if !contains(c.Queue, id) {
			return eris.Errorf("next team member %s is not queued", id)
		}
	}
	if c.InProgress {
		if !c.Ready() {
			return eris.New("in progress without complete teams")
		}
		if c.StartedAt == nil {
			return eris.New("in progress without start time")
		}
	} else if c.StartedAt != nil {
		return eris.New("start time set on idle court")
	}
	return nil
}

func uniqueKnown(ids []string, players map[string]bool) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return eris.Errorf("player %s listed twice", id)
		}
		seen[id] = true
		if !players[id] {
			return eris.Errorf("unknown player %s", id)
		}
	}
	return nil
}
