package session

type Mode string

const (
	ModeSingles Mode = "singles"
	ModeDoubles Mode = "doubles"
)

func (m Mode) Valid() bool {
	return m == ModeSingles || m == ModeDoubles
}

// PerTeam is the number of players each side needs.
func (m Mode) PerTeam() int {
	if m == ModeSingles {
		return 1
	}
	return 2
}

// Capacity is the number of players the court holds.
func (m Mode) Capacity() int {
	return 2 * m.PerTeam()
}

type CourtState int

const (
	CourtEmpty      CourtState = iota // No players staged
	CourtStaging                      // Players staged, teams incomplete
	CourtReady                        // Teams complete, game can start
	CourtInProgress                   // Game running, court locked
)

func (s CourtState) String() string {
	switch s {
	case CourtEmpty:
		return "empty"
	case CourtStaging:
		return "staging"
	case CourtReady:
		return "ready"
	case CourtInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

type Court struct {
	Index      int      `json:"index"`
	Mode       Mode     `json:"mode"`
	PlayerIDs  []string `json:"playerIds"`
	PairA      []string `json:"pairA"`
	PairB      []string `json:"pairB"`
	InProgress bool     `json:"inProgress"`
	StartedAt  *int64   `json:"startedAt,omitempty"`
	Queue      []string `json:"queue"`
	NextA      []string `json:"nextA"`
	NextB      []string `json:"nextB"`
}

func newCourt(index int, mode Mode) Court {
	return Court{
		Index:     index,
		Mode:      mode,
		PlayerIDs: []string{},
		PairA:     []string{},
		PairB:     []string{},
		Queue:     []string{},
		NextA:     []string{},
		NextB:     []string{},
	}
}

func (c Court) clone() Court {
	out := c
	out.PlayerIDs = cloneIDs(c.PlayerIDs)
	out.PairA = cloneIDs(c.PairA)
	out.PairB = cloneIDs(c.PairB)
	out.StartedAt = cloneInt64(c.StartedAt)
	out.Queue = cloneIDs(c.Queue)
	out.NextA = cloneIDs(c.NextA)
	out.NextB = cloneIDs(c.NextB)
	return out
}

// State derives the lifecycle state from the court's fields.
func (c Court) State() CourtState {
	switch {
	case c.InProgress:
		return CourtInProgress
	case len(c.PlayerIDs) == 0:
		return CourtEmpty
	case c.Ready():
		return CourtReady
	default:
		return CourtStaging
	}
}

// Ready reports whether both teams are exactly full and the staged players
// are exactly their union.
func (c Court) Ready() bool {
	per := c.Mode.PerTeam()
	if len(c.PairA) != per || len(c.PairB) != per {
		return false
	}
	if len(c.PlayerIDs) != 2*per {
		return false
	}
	for _, id := range c.PlayerIDs {
		if !contains(c.PairA, id) && !contains(c.PairB, id) {
			return false
		}
	}
	for _, id := range c.PairA {
		if contains(c.PairB, id) {
			return false
		}
	}
	return true
}

// Full reports whether no more players can be staged.
func (c Court) Full() bool {
	return len(c.PlayerIDs) >= c.Mode.Capacity()
}

// unstage drops id from the staged players and both teams.
func (c *Court) unstage(id string) {
	c.PlayerIDs = without(c.PlayerIDs, id)
	c.PairA = without(c.PairA, id)
	c.PairB = without(c.PairB, id)
}

// unqueue drops id from the queue and the pre-assigned next teams.
func (c *Court) unqueue(id string) {
	c.Queue = without(c.Queue, id)
	c.NextA = without(c.NextA, id)
	c.NextB = without(c.NextB, id)
}

func (c *Court) clear() {
	c.PlayerIDs = []string{}
	c.PairA = []string{}
	c.PairB = []string{}
	c.InProgress = false
	c.StartedAt = nil
}
