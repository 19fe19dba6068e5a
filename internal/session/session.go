// Package session holds the in-memory model of one club session and the
// operations an organizer runs against it.
//
// A Session is treated as an immutable value: Engine.Apply clones it, runs
// the operation on the clone and returns the clone, or returns the input
// pointer together with a *Rejection when the operation is not allowed.
package session

type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderUnknown, GenderMale, GenderFemale:
		return true
	}
	return false
}

type Team string

const (
	TeamNone Team = ""
	TeamA    Team = "A"
	TeamB    Team = "B"
)

type Winner string

const (
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerDraw Winner = "draw"
)

type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Gender      Gender `json:"gender,omitempty"`
	GamesPlayed int    `json:"gamesPlayed"`
	AccountUID  string `json:"accountUid,omitempty"`
}

// Game is a completed (or voided) match. Timestamps are Unix milliseconds.
type Game struct {
	ID         string   `json:"id"`
	CourtIndex int      `json:"courtIndex"`
	EndedAt    int64    `json:"endedAt"`
	StartedAt  *int64   `json:"startedAt,omitempty"`
	DurationMs *int64   `json:"durationMs,omitempty"`
	SideA      []string `json:"sideA"`
	SideB      []string `json:"sideB"`
	SideANames []string `json:"sideANames"`
	SideBNames []string `json:"sideBNames"`
	ScoreA     int      `json:"scoreA"`
	ScoreB     int      `json:"scoreB"`
	Winner     Winner   `json:"winner"`
	Voided     bool     `json:"voided"`
}

// Participants returns both sides, A first.
func (g Game) Participants() []string {
	out := make([]string, 0, len(g.SideA)+len(g.SideB))
	out = append(out, g.SideA...)
	return append(out, g.SideB...)
}

type Blacklist struct {
	Pairs [][2]string `json:"pairs"`
}

type AutoAssignConfig struct {
	BalanceGender bool `json:"balanceGender"`
}

// Session is the root aggregate. Games are kept newest first.
type Session struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	Ended     bool   `json:"ended"`
	EndedAt   *int64 `json:"endedAt,omitempty"`

	Players []Player `json:"players"`
	Courts  []Court  `json:"courts"`
	Games   []Game   `json:"games"`

	AutoAssignExclude   []string         `json:"autoAssignExclude"`
	AutoAssignBlacklist Blacklist        `json:"autoAssignBlacklist"`
	AutoAssignConfig    AutoAssignConfig `json:"autoAssignConfig"`
}

// Clone returns a deep copy. Nil slices stay nil.
func (s *Session) Clone() *Session {
	c := *s
	c.EndedAt = cloneInt64(s.EndedAt)
	if s.Players != nil {
		c.Players = make([]Player, len(s.Players))
		copy(c.Players, s.Players)
	}
	if s.Courts != nil {
		c.Courts = make([]Court, len(s.Courts))
		for i, court := range s.Courts {
			c.Courts[i] = court.clone()
		}
	}
	if s.Games != nil {
		c.Games = make([]Game, len(s.Games))
		for i, g := range s.Games {
			c.Games[i] = g.clone()
		}
	}
	c.AutoAssignExclude = cloneIDs(s.AutoAssignExclude)
	if s.AutoAssignBlacklist.Pairs != nil {
		c.AutoAssignBlacklist.Pairs = make([][2]string, len(s.AutoAssignBlacklist.Pairs))
		copy(c.AutoAssignBlacklist.Pairs, s.AutoAssignBlacklist.Pairs)
	}
	return &c
}

func (g Game) clone() Game {
	c := g
	c.StartedAt = cloneInt64(g.StartedAt)
	c.DurationMs = cloneInt64(g.DurationMs)
	c.SideA = cloneIDs(g.SideA)
	c.SideB = cloneIDs(g.SideB)
	c.SideANames = cloneIDs(g.SideANames)
	c.SideBNames = cloneIDs(g.SideBNames)
	return c
}

// Player returns the player with the given id, or nil.
func (s *Session) Player(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Game returns the recorded game with the given id, or nil.
func (s *Session) Game(id string) *Game {
	for i := range s.Games {
		if s.Games[i].ID == id {
			return &s.Games[i]
		}
	}
	return nil
}

// CourtOf returns the court whose staged players include id, or nil.
func (s *Session) CourtOf(id string) *Court {
	for i := range s.Courts {
		if contains(s.Courts[i].PlayerIDs, id) {
			return &s.Courts[i]
		}
	}
	return nil
}

// QueuedOn returns the court whose queue holds id, or nil.
func (s *Session) QueuedOn(id string) *Court {
	for i := range s.Courts {
		if contains(s.Courts[i].Queue, id) {
			return &s.Courts[i]
		}
	}
	return nil
}

// Playing reports whether id is on a court with a game in progress.
func (s *Session) Playing(id string) bool {
	c := s.CourtOf(id)
	return c != nil && c.InProgress
}

// Excluded reports whether id is ignored by auto-assign.
func (s *Session) Excluded(id string) bool {
	return contains(s.AutoAssignExclude, id)
}

func (s *Session) playerNames(ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		if p := s.Player(id); p != nil {
			names[i] = p.Name
		} else {
			names[i] = id
		}
	}
	return names
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// without returns ids minus id, always as a fresh slice.
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func intersect(ids, keep []string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if contains(keep, v) {
			out = append(out, v)
		}
	}
	return out
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
