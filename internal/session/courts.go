package session

// AddCourt appends an empty court after the last one. Mode defaults to
// doubles.
type AddCourt struct {
	Mode Mode
}

func (op AddCourt) Kind() string { return "add_court" }

func (op AddCourt) apply(_ *Engine, s *Session) error {
	mode := op.Mode
	if mode == "" {
		mode = ModeDoubles
	}
	if !mode.Valid() {
		return reject(ErrInvalidMode, "%q", op.Mode)
	}
	s.Courts = append(s.Courts, newCourt(len(s.Courts), mode))
	return nil
}

// RemoveCourt deletes a court and renumbers the ones after it.
type RemoveCourt struct {
	CourtIndex int
}

func (op RemoveCourt) Kind() string { return "remove_court" }

func (op RemoveCourt) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if court.InProgress {
		return reject(ErrCourtLocked, "court %d", op.CourtIndex)
	}
	courts := make([]Court, 0, len(s.Courts)-1)
	for i, c := range s.Courts {
		if i == op.CourtIndex {
			continue
		}
		c.Index = len(courts)
		courts = append(courts, c)
	}
	s.Courts = courts
	return nil
}

// SetCourtMode switches between singles and doubles. Staged players beyond
// the new capacity are dropped from the end (last added go first), the queue
// is cut the same way, and all team assignments are cleared.
type SetCourtMode struct {
	CourtIndex int
	Mode       Mode
}

func (op SetCourtMode) Kind() string { return "set_court_mode" }

func (op SetCourtMode) apply(_ *Engine, s *Session) error {
	if !op.Mode.Valid() {
		return reject(ErrInvalidMode, "%q", op.Mode)
	}
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if court.InProgress {
		return reject(ErrCourtLocked, "court %d", op.CourtIndex)
	}
	if court.Mode == op.Mode {
		return nil
	}
	capacity := op.Mode.Capacity()
	court.Mode = op.Mode
	if len(court.PlayerIDs) > capacity {
		court.PlayerIDs = court.PlayerIDs[:capacity]
	}
	if len(court.Queue) > capacity {
		court.Queue = court.Queue[:capacity]
	}
	court.PairA = []string{}
	court.PairB = []string{}
	court.NextA = []string{}
	court.NextB = []string{}
	return nil
}

// AssignPlayerToCourt stages a player on a court, moving them off any other
// court first. A nil CourtIndex just unassigns them.
type AssignPlayerToCourt struct {
	PlayerID   string
	CourtIndex *int
}

func (op AssignPlayerToCourt) Kind() string { return "assign_player" }

func (op AssignPlayerToCourt) apply(_ *Engine, s *Session) error {
	if _, err := playerAt(s, op.PlayerID); err != nil {
		return err
	}
	current := s.CourtOf(op.PlayerID)
	if current != nil && current.InProgress {
		return reject(ErrCourtLocked, "player %s is playing on court %d", op.PlayerID, current.Index)
	}
	if op.CourtIndex == nil {
		if current != nil {
			current.unstage(op.PlayerID)
		}
		return nil
	}

	target, err := courtAt(s, *op.CourtIndex)
	if err != nil {
		return err
	}
	if target.InProgress {
		return reject(ErrCourtLocked, "court %d", target.Index)
	}
	if current == target {
		return nil
	}
	if target.Full() {
		return reject(ErrCapacityExceeded, "court %d holds %d", target.Index, target.Mode.Capacity())
	}
	if current != nil {
		current.unstage(op.PlayerID)
	}
	target.PlayerIDs = append(target.PlayerIDs, op.PlayerID)
	return nil
}

// SetPlayerPair moves a staged player onto team A or B, or off both teams
// with TeamNone. Teams may be left incomplete.
type SetPlayerPair struct {
	CourtIndex int
	PlayerID   string
	Team       Team
}

func (op SetPlayerPair) Kind() string { return "set_player_pair" }

func (op SetPlayerPair) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if court.InProgress {
		return reject(ErrCourtLocked, "court %d", op.CourtIndex)
	}
	if !contains(court.PlayerIDs, op.PlayerID) {
		return reject(ErrNotOnCourt, "player %s is not on court %d", op.PlayerID, op.CourtIndex)
	}
	pairA, pairB, err := moveToTeam(court.PairA, court.PairB, op.PlayerID, op.Team, court.Mode.PerTeam())
	if err != nil {
		return err
	}
	court.PairA, court.PairB = pairA, pairB
	return nil
}

// moveToTeam returns new team lists with id placed on team.
func moveToTeam(a, b []string, id string, team Team, perTeam int) ([]string, []string, error) {
	switch team {
	case TeamNone:
		return without(a, id), without(b, id), nil
	case TeamA:
		if contains(a, id) {
			return a, b, nil
		}
		if len(a) >= perTeam {
			return nil, nil, reject(ErrCapacityExceeded, "team A is full")
		}
		return append(without(a, id), id), without(b, id), nil
	case TeamB:
		if contains(b, id) {
			return a, b, nil
		}
		if len(b) >= perTeam {
			return nil, nil, reject(ErrCapacityExceeded, "team B is full")
		}
		return without(a, id), append(without(b, id), id), nil
	default:
		return nil, nil, reject(ErrInvalidTeam, "%q", team)
	}
}
