// Package pairing picks players for a court and splits them into teams.
//
// Everything here is a pure function of its inputs. Candidate order matters:
// pools are ranked by games played, then name, then id, and only the first
// few ranked players are searched, so the same input always yields the same
// court.
package pairing

import "sort"

// Search caps: only the least-played candidates are enumerated.
const (
	SinglesCandidateCap = 10
	DoublesCandidateCap = 8
)

const (
	genderPenalty     = 500
	togetherWeight    = 1000
	gamesPlayedWeight = 1
	streakWeight      = 2000
)

const (
	genderMale   = "M"
	genderFemale = "F"
)

// Candidate is a player the optimizer may place on a court.
type Candidate struct {
	ID          string
	Name        string
	Gender      string
	GamesPlayed int
}

// CandidateCap returns how many ranked candidates are searched for a court
// with perTeam players per side.
func CandidateCap(perTeam int) int {
	if perTeam == 1 {
		return SinglesCandidateCap
	}
	return DoublesCandidateCap
}

// Rank orders candidates by games played ascending, then name, then id, and
// keeps at most limit of them. A negative limit keeps everyone.
func Rank(pool []Candidate, limit int) []Candidate {
	ranked := make([]Candidate, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed < b.GamesPlayed
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Score rates a group of players that would share a court. Lower is better.
func Score(group []Candidate, h *History, balanceGender bool) int {
	score := 0
	if balanceGender && !genderBalanced(group) {
		score += genderPenalty
	}
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			score += togetherWeight * h.Together(group[i].ID, group[j].ID)
		}
	}
	for _, c := range group {
		score += gamesPlayedWeight * c.GamesPlayed
		score += streakWeight * h.Streak(c.ID)
	}
	return score
}

// genderBalanced treats a group as balanced when it is single-gender or has
// equal men and women. Players without a recorded gender are ignored.
func genderBalanced(group []Candidate) bool {
	men, women := 0, 0
	for _, c := range group {
		switch c.Gender {
		case genderMale:
			men++
		case genderFemale:
			women++
		}
	}
	return men == 0 || women == 0 || men == women
}

// Request describes one selection: choose Need players from Pool to join the
// Fixed players already on the court.
type Request struct {
	Pool          []Candidate
	Fixed         []Candidate
	FixedA        []string
	FixedB        []string
	Need          int
	PerTeam       int
	History       *History
	Blacklist     Blacklist
	BalanceGender bool
}

// Choice is the selected players and the resulting teams.
type Choice struct {
	Selected []string
	A        []string
	B        []string
	Score    int
	// Clean is false when every evaluated group forced a blacklisted pair
	// onto one team.
	Clean bool
}

// Select enumerates every Need-sized subset of the ranked, capped pool and
// returns the best one. A blacklist-clean group always beats one that is not;
// within the same tier the lower score wins and the first subset found wins
// ties. The second result is false when the pool cannot supply Need players.
func Select(req Request) (Choice, bool) {
	if req.Need <= 0 || req.PerTeam <= 0 {
		return Choice{}, false
	}
	ranked := Rank(req.Pool, CandidateCap(req.PerTeam))
	if len(ranked) < req.Need {
		return Choice{}, false
	}

	fixedIDs := candidateIDs(req.Fixed)
	var best *Choice
	eachCombination(len(ranked), req.Need, func(idx []int) {
		subset := make([]Candidate, len(idx))
		for i, n := range idx {
			subset[i] = ranked[n]
		}
		group := append(append(make([]Candidate, 0, len(req.Fixed)+len(subset)), req.Fixed...), subset...)
		selected := candidateIDs(subset)
		players := append(append(make([]string, 0, len(group)), fixedIDs...), selected...)

		split, clean := Teams(players, req.FixedA, req.FixedB, req.PerTeam, req.Blacklist)
		score := Score(group, req.History, req.BalanceGender)
		if best != nil && !better(clean, score, best) {
			return
		}
		best = &Choice{
			Selected: selected,
			A:        split.A,
			B:        split.B,
			Score:    score,
			Clean:    clean,
		}
	})
	if best == nil {
		return Choice{}, false
	}
	return *best, true
}

func better(clean bool, score int, current *Choice) bool {
	if clean != current.Clean {
		return clean
	}
	return score < current.Score
}

// eachCombination calls fn with every k-subset of [0, n) in lexicographic
// order. fn must not retain idx.
func eachCombination(n, k int, fn func(idx []int)) {
	idx := make([]int, 0, k)
	var walk func(start int)
	walk = func(start int) {
		if len(idx) == k {
			fn(idx)
			return
		}
		for i := start; i <= n-(k-len(idx)); i++ {
			idx = append(idx, i)
			walk(i + 1)
			idx = idx[:len(idx)-1]
		}
	}
	walk(0)
}

func candidateIDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}
