package session

import "math"

// StartGame locks a ready court and stamps its start time.
type StartGame struct {
	CourtIndex int
}

func (op StartGame) Kind() string { return "start_game" }

func (op StartGame) apply(e *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if court.InProgress {
		return reject(ErrCourtLocked, "court %d", op.CourtIndex)
	}
	if !court.Ready() {
		return reject(ErrNotReady, "court %d is %s", op.CourtIndex, court.State())
	}
	for i := range s.Courts {
		other := &s.Courts[i]
		if i == op.CourtIndex || !other.InProgress {
			continue
		}
		for _, id := range court.PlayerIDs {
			if contains(other.PlayerIDs, id) {
				return reject(ErrPlayerBusyElsewhere, "player %s is playing on court %d", id, other.Index)
			}
		}
	}
	now := e.nowMs()
	court.InProgress = true
	court.StartedAt = &now
	return nil
}

// EndGame records the result of a running game and frees the court. Scores
// are floored and negative values become zero; NaN, infinite and absurdly
// large scores are rejected.
type EndGame struct {
	CourtIndex int
	ScoreA     float64
	ScoreB     float64
}

func (op EndGame) Kind() string { return "end_game" }

func (op EndGame) apply(e *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if !court.InProgress {
		return reject(ErrNotReady, "court %d has no game in progress", op.CourtIndex)
	}
	scoreA, okA := coerceScore(op.ScoreA)
	scoreB, okB := coerceScore(op.ScoreB)
	if !okA || !okB {
		return reject(ErrInvalidScore, "%v-%v", op.ScoreA, op.ScoreB)
	}
	finishGame(e, s, court, scoreA, scoreB, false)
	return nil
}

// VoidGame frees a running court without a result. The game is kept in the
// history as a 0-0 voided draw and does not count towards games played.
type VoidGame struct {
	CourtIndex int
}

func (op VoidGame) Kind() string { return "void_game" }

func (op VoidGame) apply(e *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if !court.InProgress {
		return reject(ErrNotReady, "court %d has no game in progress", op.CourtIndex)
	}
	finishGame(e, s, court, 0, 0, true)
	return nil
}

func finishGame(e *Engine, s *Session, court *Court, scoreA, scoreB int, voided bool) {
	now := e.nowMs()
	g := Game{
		ID:         e.NewID(),
		CourtIndex: court.Index,
		EndedAt:    now,
		StartedAt:  cloneInt64(court.StartedAt),
		SideA:      cloneIDs(court.PairA),
		SideB:      cloneIDs(court.PairB),
		SideANames: s.playerNames(court.PairA),
		SideBNames: s.playerNames(court.PairB),
		ScoreA:     scoreA,
		ScoreB:     scoreB,
		Winner:     winnerOf(scoreA, scoreB),
		Voided:     voided,
	}
	if court.StartedAt != nil {
		d := max(now-*court.StartedAt, 0)
		g.DurationMs = &d
	}
	s.Games = append([]Game{g}, s.Games...)

	if !voided {
		for _, id := range g.Participants() {
			if p := s.Player(id); p != nil {
				p.GamesPlayed++
			}
		}
	}

	court.clear()
	pullQueue(s, court)
}

func winnerOf(scoreA, scoreB int) Winner {
	switch {
	case scoreA > scoreB:
		return WinnerA
	case scoreB > scoreA:
		return WinnerB
	default:
		return WinnerDraw
	}
}

// maxScore bounds a recorded score so it always fits in an int.
const maxScore = math.MaxInt32

func coerceScore(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v > maxScore {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return int(math.Floor(v)), true
}

// CorrectGame rewrites the score, sides or duration of a recorded game. The
// winner follows the corrected score, so a draw is possible here. Nil sides
// and a nil duration keep the recorded values.
type CorrectGame struct {
	GameID     string
	ScoreA     float64
	ScoreB     float64
	SideA      []string
	SideB      []string
	DurationMs *int64
}

func (op CorrectGame) Kind() string { return "correct_game" }

func (op CorrectGame) apply(_ *Engine, s *Session) error {
	g := s.Game(op.GameID)
	if g == nil {
		return reject(ErrGameNotFound, "game %s", op.GameID)
	}
	scoreA, okA := coerceScore(op.ScoreA)
	scoreB, okB := coerceScore(op.ScoreB)
	if !okA || !okB {
		return reject(ErrInvalidScore, "%v-%v", op.ScoreA, op.ScoreB)
	}

	sideA, sideB := g.SideA, g.SideB
	if op.SideA != nil {
		sideA = op.SideA
	}
	if op.SideB != nil {
		sideB = op.SideB
	}
	if err := validateSides(s, g, sideA, sideB); err != nil {
		return err
	}

	before := g.Participants()
	namesA := correctedNames(s, g, sideA)
	namesB := correctedNames(s, g, sideB)
	g.SideA, g.SideB = cloneIDs(sideA), cloneIDs(sideB)
	g.SideANames, g.SideBNames = namesA, namesB
	g.ScoreA, g.ScoreB = scoreA, scoreB
	g.Winner = winnerOf(scoreA, scoreB)
	if op.DurationMs != nil {
		d := max(*op.DurationMs, 0)
		g.DurationMs = &d
	}

	if g.Voided {
		return nil
	}
	after := g.Participants()
	for _, id := range before {
		if p := s.Player(id); p != nil && !contains(after, id) && p.GamesPlayed > 0 {
			p.GamesPlayed--
		}
	}
	for _, id := range after {
		if p := s.Player(id); p != nil && !contains(before, id) {
			p.GamesPlayed++
		}
	}
	return nil
}

func validateSides(s *Session, g *Game, sideA, sideB []string) error {
	if len(sideA) == 0 || len(sideB) == 0 {
		return reject(ErrInvalidTeam, "both sides need players")
	}
	seen := make(map[string]bool, len(sideA)+len(sideB))
	for _, id := range append(cloneIDs(sideA), sideB...) {
		if seen[id] {
			return reject(ErrInvalidTeam, "player %s listed twice", id)
		}
		seen[id] = true
		if s.Player(id) == nil && !contains(g.SideA, id) && !contains(g.SideB, id) {
			return reject(ErrPlayerNotFound, "player %s", id)
		}
	}
	return nil
}

// correctedNames prefers the current player name, then the name recorded
// with the game, then the raw id.
func correctedNames(s *Session, g *Game, ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		switch {
		case s.Player(id) != nil:
			names[i] = s.Player(id).Name
		case recordedName(g, id) != "":
			names[i] = recordedName(g, id)
		default:
			names[i] = id
		}
	}
	return names
}

func recordedName(g *Game, id string) string {
	for i, v := range g.SideA {
		if v == id && i < len(g.SideANames) {
			return g.SideANames[i]
		}
	}
	for i, v := range g.SideB {
		if v == id && i < len(g.SideBNames) {
			return g.SideBNames[i]
		}
	}
	return ""
}

// EndSession closes the session for good. Running games must be ended or
// voided first.
type EndSession struct{}

func (op EndSession) Kind() string { return "end_session" }

func (op EndSession) apply(e *Engine, s *Session) error {
	for _, c := range s.Courts {
		if c.InProgress {
			return reject(ErrCourtLocked, "court %d has a game in progress", c.Index)
		}
	}
	now := e.nowMs()
	s.Ended = true
	s.EndedAt = &now
	return nil
}
