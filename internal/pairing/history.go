package pairing

// Record is one game as seen by the optimizer: who took part and whether the
// result was voided.
type Record struct {
	Players []string
	Voided  bool
}

type pairKey struct {
	a, b string
}

func normalizePair(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// History answers co-occurrence and streak questions over past games.
// Records are ordered newest first.
type History struct {
	records  []Record
	together map[pairKey]int
}

// NewHistory indexes records, newest first.
func NewHistory(records []Record) *History {
	h := &History{
		records:  records,
		together: make(map[pairKey]int),
	}
	for _, r := range records {
		// Voided games still count: the players did share a court.
		for i := 0; i < len(r.Players); i++ {
			for j := i + 1; j < len(r.Players); j++ {
				h.together[normalizePair(r.Players[i], r.Players[j])]++
			}
		}
	}
	return h
}

// Together returns how many recorded games contained both a and b.
func (h *History) Together(a, b string) int {
	if h == nil {
		return 0
	}
	return h.together[normalizePair(a, b)]
}

// Streak returns how many of the most recent non-voided games the player
// took part in without a break. Voided games are skipped entirely: they
// neither extend a streak nor break one.
func (h *History) Streak(id string) int {
	if h == nil {
		return 0
	}
	streak := 0
	for _, r := range h.records {
		if r.Voided {
			continue
		}
		if !contains(r.Players, id) {
			break
		}
		streak++
	}
	return streak
}

// Blacklist holds symmetric pairs that should not share a team.
type Blacklist struct {
	pairs map[pairKey]struct{}
}

// NewBlacklist builds a blacklist from unordered pairs.
func NewBlacklist(pairs [][2]string) Blacklist {
	bl := Blacklist{pairs: make(map[pairKey]struct{}, len(pairs))}
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		bl.pairs[normalizePair(p[0], p[1])] = struct{}{}
	}
	return bl
}

// Conflicts reports whether a and b are blacklisted together.
func (b Blacklist) Conflicts(x, y string) bool {
	_, ok := b.pairs[normalizePair(x, y)]
	return ok
}

// Clean reports whether no two members of team are blacklisted together.
func (b Blacklist) Clean(team []string) bool {
	for i := 0; i < len(team); i++ {
		for j := i + 1; j < len(team); j++ {
			if b.Conflicts(team[i], team[j]) {
				return false
			}
		}
	}
	return true
}

func (b Blacklist) fits(team []string, id string) bool {
	for _, other := range team {
		if b.Conflicts(other, id) {
			return false
		}
	}
	return true
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
