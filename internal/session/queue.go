package session

import "github.com/edvart/badminton-club/internal/pairing"

// EnqueuePlayer adds a player to a court's queue for its next game, moving
// them out of any other court's queue. Players on a running court may be
// queued; players staged on an idle court may not.
type EnqueuePlayer struct {
	CourtIndex int
	PlayerID   string
}

func (op EnqueuePlayer) Kind() string { return "enqueue_player" }

func (op EnqueuePlayer) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if _, err := playerAt(s, op.PlayerID); err != nil {
		return err
	}
	if contains(court.Queue, op.PlayerID) {
		return nil
	}
	if staged := s.CourtOf(op.PlayerID); staged != nil && !staged.InProgress {
		return reject(ErrPlayerBusyElsewhere, "player %s is staged on court %d", op.PlayerID, staged.Index)
	}
	if len(court.Queue) >= court.Mode.Capacity() {
		return reject(ErrCapacityExceeded, "queue for court %d is full", op.CourtIndex)
	}
	if other := s.QueuedOn(op.PlayerID); other != nil {
		other.unqueue(op.PlayerID)
	}
	court.Queue = append(court.Queue, op.PlayerID)
	return nil
}

type DequeuePlayer struct {
	CourtIndex int
	PlayerID   string
}

func (op DequeuePlayer) Kind() string { return "dequeue_player" }

func (op DequeuePlayer) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if !contains(court.Queue, op.PlayerID) {
		return reject(ErrNotOnCourt, "player %s is not queued on court %d", op.PlayerID, op.CourtIndex)
	}
	court.unqueue(op.PlayerID)
	return nil
}

type ClearQueue struct {
	CourtIndex int
}

func (op ClearQueue) Kind() string { return "clear_queue" }

func (op ClearQueue) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	court.Queue = []string{}
	court.NextA = []string{}
	court.NextB = []string{}
	return nil
}

// SetNextTeam pre-assigns a queued player to a side of the court's next
// game. Allowed while the court is in progress.
type SetNextTeam struct {
	CourtIndex int
	PlayerID   string
	Team       Team
}

func (op SetNextTeam) Kind() string { return "set_next_team" }

func (op SetNextTeam) apply(_ *Engine, s *Session) error {
	court, err := courtAt(s, op.CourtIndex)
	if err != nil {
		return err
	}
	if !contains(court.Queue, op.PlayerID) {
		return reject(ErrNotOnCourt, "player %s is not queued on court %d", op.PlayerID, op.CourtIndex)
	}
	nextA, nextB, err := moveToTeam(court.NextA, court.NextB, op.PlayerID, op.Team, court.Mode.PerTeam())
	if err != nil {
		return err
	}
	court.NextA, court.NextB = nextA, nextB
	return nil
}

// pullQueue stages the front of the queue on a freshly cleared court.
// Queued players who are on another court keep their place in the queue.
// The pre-assigned next teams are kept when they are blacklist-clean and
// the rest of the pulled players are split around them.
func pullQueue(s *Session, court *Court) {
	if len(court.Queue) == 0 {
		return
	}
	capacity := court.Mode.Capacity()
	pulled := make([]string, 0, capacity)
	remaining := make([]string, 0, len(court.Queue))
	for _, id := range court.Queue {
		switch {
		case s.Player(id) == nil:
		case len(pulled) >= capacity || s.CourtOf(id) != nil:
			remaining = append(remaining, id)
		default:
			pulled = append(pulled, id)
		}
	}

	per := court.Mode.PerTeam()
	bl := blacklistOf(s)
	a := truncate(intersect(court.NextA, pulled), per)
	b := truncate(intersect(court.NextB, pulled), per)
	if !bl.Clean(a) || !bl.Clean(b) {
		a, b = nil, nil
	}
	split, _ := pairing.Teams(pulled, a, b, per, bl)

	court.PlayerIDs = pulled
	court.PairA = split.A
	court.PairB = split.B
	court.Queue = remaining
	court.NextA = []string{}
	court.NextB = []string{}
}

func blacklistOf(s *Session) pairing.Blacklist {
	return pairing.NewBlacklist(s.AutoAssignBlacklist.Pairs)
}

func truncate(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}
