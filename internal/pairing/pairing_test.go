package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersByGamesThenName(t *testing.T) {
	pool := []Candidate{
		{ID: "3", Name: "Cleo", GamesPlayed: 1},
		{ID: "1", Name: "Bea", GamesPlayed: 0},
		{ID: "2", Name: "Ada", GamesPlayed: 1},
		{ID: "5", Name: "Ada", GamesPlayed: 1},
		{ID: "4", Name: "Dan", GamesPlayed: 7},
	}

	ranked := Rank(pool, 4)

	require.Len(t, ranked, 4)
	assert.Equal(t, []string{"1", "2", "5", "3"}, candidateIDs(ranked))
	assert.Equal(t, "3", pool[0].ID, "input must not be reordered")
}

func TestCandidateCap(t *testing.T) {
	assert.Equal(t, 10, CandidateCap(1))
	assert.Equal(t, 8, CandidateCap(2))
}

func TestHistory(t *testing.T) {
	h := NewHistory([]Record{
		{Players: []string{"a", "b", "c", "d"}},
		{Players: []string{"a", "b", "e", "f"}, Voided: true},
		{Players: []string{"a", "c", "e", "f"}},
		{Players: []string{"b", "c", "e", "f"}},
	})

	t.Run("together counts voided games", func(t *testing.T) {
		assert.Equal(t, 2, h.Together("a", "b"))
		assert.Equal(t, 2, h.Together("b", "a"))
		assert.Equal(t, 3, h.Together("e", "f"))
		assert.Equal(t, 0, h.Together("d", "e"))
	})

	t.Run("streak skips voided games", func(t *testing.T) {
		assert.Equal(t, 2, h.Streak("a"))
		assert.Equal(t, 1, h.Streak("b"))
		assert.Equal(t, 3, h.Streak("c"))
		assert.Equal(t, 0, h.Streak("e"))
		assert.Equal(t, 0, h.Streak("zed"))
	})

	t.Run("nil history is empty", func(t *testing.T) {
		var empty *History
		assert.Equal(t, 0, empty.Together("a", "b"))
		assert.Equal(t, 0, empty.Streak("a"))
	})
}

func TestBlacklist(t *testing.T) {
	bl := NewBlacklist([][2]string{{"a", "b"}, {"c", "c"}})

	assert.True(t, bl.Conflicts("a", "b"))
	assert.True(t, bl.Conflicts("b", "a"))
	assert.False(t, bl.Conflicts("c", "c"))
	assert.False(t, bl.Clean([]string{"x", "b", "a"}))
	assert.True(t, bl.Clean([]string{"a", "c"}))

	var zero Blacklist
	assert.False(t, zero.Conflicts("a", "b"))
}

func TestSplitTeams(t *testing.T) {
	tests := []struct {
		name    string
		players []string
		fixedA  []string
		fixedB  []string
		perTeam int
		pairs   [][2]string
		wantA   []string
		wantB   []string
		wantOK  bool
	}{
		{
			name:    "first placement fills A first",
			players: []string{"a", "b", "c", "d"},
			perTeam: 2,
			wantA:   []string{"a", "b"},
			wantB:   []string{"c", "d"},
			wantOK:  true,
		},
		{
			name:    "blacklisted pair is separated",
			players: []string{"a", "b", "c", "d"},
			perTeam: 2,
			pairs:   [][2]string{{"a", "b"}},
			wantA:   []string{"a", "c"},
			wantB:   []string{"b", "d"},
			wantOK:  true,
		},
		{
			name:    "backtracks when the greedy branch dead-ends",
			players: []string{"a", "b", "c", "d"},
			perTeam: 2,
			pairs:   [][2]string{{"c", "d"}, {"b", "d"}},
			wantA:   []string{"a", "d"},
			wantB:   []string{"b", "c"},
			wantOK:  true,
		},
		{
			name:    "fixed players stay put",
			players: []string{"a", "b", "c", "d"},
			fixedB:  []string{"a"},
			perTeam: 2,
			wantA:   []string{"b", "c"},
			wantB:   []string{"a", "d"},
			wantOK:  true,
		},
		{
			name:    "singles never conflicts",
			players: []string{"a", "b"},
			perTeam: 1,
			pairs:   [][2]string{{"a", "b"}},
			wantA:   []string{"a"},
			wantB:   []string{"b"},
			wantOK:  true,
		},
		{
			name:    "impossible split",
			players: []string{"a", "b", "c", "d"},
			perTeam: 2,
			pairs:   [][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}},
			wantOK:  false,
		},
		{
			name:    "partial court leaves room",
			players: []string{"a", "b", "c"},
			perTeam: 2,
			pairs:   [][2]string{{"a", "b"}},
			wantA:   []string{"a", "c"},
			wantB:   []string{"b"},
			wantOK:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SplitTeams(tc.players, tc.fixedA, tc.fixedB, tc.perTeam, NewBlacklist(tc.pairs))
			require.Equal(t, tc.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.wantA, got.A)
			assert.Equal(t, tc.wantB, got.B)
		})
	}
}

func TestTeamsFallsBackToNaiveFill(t *testing.T) {
	bl := NewBlacklist([][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}})

	split, clean := Teams([]string{"a", "b", "c", "d"}, nil, nil, 2, bl)

	assert.False(t, clean)
	assert.Equal(t, []string{"a", "b"}, split.A)
	assert.Equal(t, []string{"c", "d"}, split.B)
}

func TestNaiveSplitDropsOverflow(t *testing.T) {
	split := NaiveSplit([]string{"a", "b", "c"}, []string{"x", "y"}, nil, 1)

	assert.Equal(t, []string{"x"}, split.A)
	assert.Equal(t, []string{"a"}, split.B)
}

func TestScore(t *testing.T) {
	h := NewHistory([]Record{
		{Players: []string{"a", "b"}},
	})
	group := []Candidate{
		{ID: "a", Gender: "M", GamesPlayed: 3},
		{ID: "b", Gender: "M", GamesPlayed: 2},
		{ID: "c", Gender: "M", GamesPlayed: 0},
		{ID: "d", Gender: "F", GamesPlayed: 1},
	}

	// together(a,b)=1, games=6, streak a=1 b=1
	assert.Equal(t, 1000+6+4000, Score(group, h, false))
	assert.Equal(t, 1000+6+4000+500, Score(group, h, true))
}

func TestGenderBalanced(t *testing.T) {
	tests := []struct {
		name    string
		genders []string
		want    bool
	}{
		{name: "mixed pairs", genders: []string{"M", "F", "M", "F"}, want: true},
		{name: "all men", genders: []string{"M", "M", "M", "M"}, want: true},
		{name: "three to one", genders: []string{"M", "M", "M", "F"}, want: false},
		{name: "unknown ignored", genders: []string{"M", "", "F", ""}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			group := make([]Candidate, len(tc.genders))
			for i, g := range tc.genders {
				group[i] = Candidate{ID: string(rune('a' + i)), Gender: g}
			}
			assert.Equal(t, tc.want, genderBalanced(group))
		})
	}
}

func TestSelectPrefersLeastPlayed(t *testing.T) {
	pool := []Candidate{
		{ID: "p5", Name: "Eve", GamesPlayed: 5},
		{ID: "p1", Name: "Ann", GamesPlayed: 0},
		{ID: "p6", Name: "Fay", GamesPlayed: 5},
		{ID: "p3", Name: "Cat", GamesPlayed: 1},
		{ID: "p2", Name: "Bob", GamesPlayed: 0},
		{ID: "p4", Name: "Dov", GamesPlayed: 1},
	}

	choice, ok := Select(Request{Pool: pool, Need: 4, PerTeam: 2})

	require.True(t, ok)
	assert.ElementsMatch(t, []string{"p1", "p2", "p3", "p4"}, choice.Selected)
	assert.True(t, choice.Clean)
	assert.Equal(t, 2, choice.Score)
	assert.Equal(t, []string{"p1", "p2"}, choice.A)
	assert.Equal(t, []string{"p3", "p4"}, choice.B)
}

func TestSelectAvoidsBackToBack(t *testing.T) {
	var pool []Candidate
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		pool = append(pool, Candidate{ID: id, Name: id, GamesPlayed: 1})
	}
	h := NewHistory([]Record{{Players: []string{"a", "b", "c", "d"}}})

	choice, ok := Select(Request{Pool: pool, Need: 4, PerTeam: 2, History: h})

	require.True(t, ok)
	assert.Equal(t, []string{"e", "f", "g", "h"}, choice.Selected)
}

func TestSelectAvoidsRepeatMatchups(t *testing.T) {
	pool := []Candidate{
		{ID: "a", Name: "a"},
		{ID: "b", Name: "b"},
		{ID: "c", Name: "c"},
	}
	h := NewHistory([]Record{
		{Players: []string{"x"}},
		{Players: []string{"a", "b"}},
	})

	choice, ok := Select(Request{Pool: pool, Need: 2, PerTeam: 1, History: h})

	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, choice.Selected)
	assert.Equal(t, []string{"a"}, choice.A)
	assert.Equal(t, []string{"c"}, choice.B)
}

func TestSelectBlacklistIsHardPreference(t *testing.T) {
	pool := []Candidate{
		{ID: "a", Name: "a"},
		{ID: "b", Name: "b"},
		{ID: "c", Name: "c"},
		{ID: "d", Name: "d"},
		{ID: "e", Name: "e", GamesPlayed: 3},
	}
	bl := NewBlacklist([][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}})

	choice, ok := Select(Request{Pool: pool, Need: 4, PerTeam: 2, Blacklist: bl})

	require.True(t, ok)
	assert.True(t, choice.Clean)
	assert.Equal(t, []string{"a", "b", "c", "e"}, choice.Selected)
	assert.Equal(t, []string{"a", "e"}, choice.A)
	assert.Equal(t, []string{"b", "c"}, choice.B)
}

func TestSelectGenderBalance(t *testing.T) {
	pool := []Candidate{
		{ID: "a", Name: "a", Gender: "M"},
		{ID: "b", Name: "b", Gender: "M"},
		{ID: "c", Name: "c", Gender: "M"},
		{ID: "d", Name: "d", Gender: "F"},
		{ID: "e", Name: "e", Gender: "F", GamesPlayed: 1},
	}

	off, ok := Select(Request{Pool: pool, Need: 4, PerTeam: 2})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c", "d"}, off.Selected)

	on, ok := Select(Request{Pool: pool, Need: 4, PerTeam: 2, BalanceGender: true})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "d", "e"}, on.Selected)
	assert.Equal(t, 1, on.Score)
}

func TestSelectPartialFill(t *testing.T) {
	fixed := []Candidate{{ID: "a", Name: "a"}, {ID: "b", Name: "b"}}
	pool := []Candidate{
		{ID: "c", Name: "c"},
		{ID: "d", Name: "d"},
		{ID: "e", Name: "e"},
	}
	h := NewHistory([]Record{
		{Players: []string{"z"}},
		{Players: []string{"a", "c"}},
	})

	choice, ok := Select(Request{
		Pool:    pool,
		Fixed:   fixed,
		FixedA:  []string{"a"},
		FixedB:  []string{"b"},
		Need:    2,
		PerTeam: 2,
		History: h,
	})

	require.True(t, ok)
	assert.Equal(t, []string{"d", "e"}, choice.Selected)
	assert.Equal(t, []string{"a", "d"}, choice.A)
	assert.Equal(t, []string{"b", "e"}, choice.B)
}

func TestSelectCapsSearchSpace(t *testing.T) {
	var pool []Candidate
	for i := 0; i < 12; i++ {
		pool = append(pool, Candidate{ID: string(rune('a' + i)), Name: string(rune('a' + i)), GamesPlayed: 2})
	}
	// k and l rank last and fall outside the singles cap even though they
	// are the only pair without a shared history.
	var records []Record
	for i := 0; i < 10; i++ {
		for j := i + 1; j < 10; j++ {
			records = append(records, Record{Players: []string{"z"}}, Record{Players: []string{pool[i].ID, pool[j].ID}})
		}
	}

	choice, ok := Select(Request{Pool: pool, Need: 2, PerTeam: 1, History: NewHistory(records)})

	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, choice.Selected)
}

func TestSelectRejectsShortPool(t *testing.T) {
	_, ok := Select(Request{Pool: []Candidate{{ID: "a"}}, Need: 2, PerTeam: 1})
	assert.False(t, ok)

	_, ok = Select(Request{Pool: []Candidate{{ID: "a"}}, Need: 0, PerTeam: 1})
	assert.False(t, ok)
}

func TestEachCombination(t *testing.T) {
	var got [][]int
	eachCombination(4, 2, func(idx []int) {
		got = append(got, append([]int(nil), idx...))
	})
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}
