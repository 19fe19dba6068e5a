package codec

import (
	"sort"

	"github.com/edvart/badminton-club/internal/session"
)

// PlayerStats is one row of the session summary.
type PlayerStats struct {
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
	Games         int    `json:"games"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Draws         int    `json:"draws"`
	PointsFor     int    `json:"pointsFor"`
	PointsAgainst int    `json:"pointsAgainst"`
}

type Summary struct {
	SessionID string        `json:"sessionId"`
	Games     int           `json:"games"`
	Voided    int           `json:"voided"`
	Players   []PlayerStats `json:"players"`
}

// Summarize reduces the recorded games of a session. Voided games are only
// counted, never scored. Rows for removed players keep the name the games
// were recorded with. Rows are ordered by wins, then games, then name.
func Summarize(s *session.Session) Summary {
	sum := Summary{SessionID: s.ID, Players: []PlayerStats{}}
	rows := make(map[string]*PlayerStats)
	row := func(id, name string) *PlayerStats {
		r, ok := rows[id]
		if !ok {
			r = &PlayerStats{PlayerID: id, Name: name}
			if p := s.Player(id); p != nil {
				r.Name = p.Name
			}
			rows[id] = r
		}
		return r
	}
	for _, p := range s.Players {
		row(p.ID, p.Name)
	}

	for _, g := range s.Games {
		if g.Voided {
			sum.Voided++
			continue
		}
		sum.Games++
		tally := func(ids, names []string, own, other int, win session.Winner) {
			for i, id := range ids {
				name := id
				if i < len(names) {
					name = names[i]
				}
				r := row(id, name)
				r.Games++
				r.PointsFor += own
				r.PointsAgainst += other
				switch g.Winner {
				case win:
					r.Wins++
				case session.WinnerDraw:
					r.Draws++
				default:
					r.Losses++
				}
			}
		}
		tally(g.SideA, g.SideANames, g.ScoreA, g.ScoreB, session.WinnerA)
		tally(g.SideB, g.SideBNames, g.ScoreB, g.ScoreA, session.WinnerB)
	}

	for _, r := range rows {
		sum.Players = append(sum.Players, *r)
	}
	sort.Slice(sum.Players, func(i, j int) bool {
		a, b := sum.Players[i], sum.Players[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Games != b.Games {
			return a.Games > b.Games
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})
	return sum
}
