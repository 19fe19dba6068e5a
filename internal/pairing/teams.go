package pairing

// Split is a team assignment for one court.
type Split struct {
	A []string
	B []string
}

// SplitTeams places every player not already in fixedA or fixedB onto a team
// of at most perTeam players so that no team holds a blacklisted pair.
//
// Players are tried in order, side A before side B, and the first complete
// placement found is returned. The second result is false when no such
// placement exists.
func SplitTeams(players, fixedA, fixedB []string, perTeam int, bl Blacklist) (Split, bool) {
	if len(fixedA) > perTeam || len(fixedB) > perTeam {
		return Split{}, false
	}
	if !bl.Clean(fixedA) || !bl.Clean(fixedB) {
		return Split{}, false
	}
	return place(unplaced(players, fixedA, fixedB), copyIDs(fixedA), copyIDs(fixedB), perTeam, bl)
}

func place(rest, a, b []string, perTeam int, bl Blacklist) (Split, bool) {
	if len(rest) == 0 {
		return Split{A: a, B: b}, true
	}
	p, tail := rest[0], rest[1:]
	if len(a) < perTeam && bl.fits(a, p) {
		if s, ok := place(tail, appendID(a, p), b, perTeam, bl); ok {
			return s, true
		}
	}
	if len(b) < perTeam && bl.fits(b, p) {
		if s, ok := place(tail, a, appendID(b, p), perTeam, bl); ok {
			return s, true
		}
	}
	return Split{}, false
}

// NaiveSplit fills side A and then side B in player order, ignoring the
// blacklist. Players that do not fit are left off both teams.
func NaiveSplit(players, fixedA, fixedB []string, perTeam int) Split {
	a := copyIDs(truncate(fixedA, perTeam))
	b := copyIDs(truncate(fixedB, perTeam))
	for _, id := range unplaced(players, a, b) {
		switch {
		case len(a) < perTeam:
			a = append(a, id)
		case len(b) < perTeam:
			b = append(b, id)
		}
	}
	return Split{A: a, B: b}
}

// Teams returns the blacklist-aware split when one exists and the naive
// split otherwise. The boolean reports whether the result is blacklist-clean.
func Teams(players, fixedA, fixedB []string, perTeam int, bl Blacklist) (Split, bool) {
	if s, ok := SplitTeams(players, fixedA, fixedB, perTeam, bl); ok {
		return s, true
	}
	s := NaiveSplit(players, fixedA, fixedB, perTeam)
	return s, bl.Clean(s.A) && bl.Clean(s.B)
}

func unplaced(players, a, b []string) []string {
	rest := make([]string, 0, len(players))
	for _, id := range players {
		if !contains(a, id) && !contains(b, id) {
			rest = append(rest, id)
		}
	}
	return rest
}

// appendID never writes into the backing array of ids, so sibling branches
// of the search cannot observe each other's placements.
func appendID(ids []string, id string) []string {
	out := make([]string, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func truncate(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}
