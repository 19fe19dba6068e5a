package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvart/badminton-club/internal/codec"
	"github.com/edvart/badminton-club/internal/coordinator"
	"github.com/edvart/badminton-club/internal/session"
	"github.com/edvart/badminton-club/internal/store"
)

type fakeStore struct {
	sessions map[string]store.SessionRecord
	games    map[string]store.GameRecord
	changes  []store.Change
	failSave error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[string]store.SessionRecord),
		games:    make(map[string]store.GameRecord),
	}
}

func (f *fakeStore) SaveSession(_ context.Context, s *store.SessionRecord) error {
	if f.failSave != nil {
		return f.failSave
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, id string) (*store.SessionRecord, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) ListSessions(_ context.Context, activeOnly bool) ([]store.SessionRecord, error) {
	out := []store.SessionRecord{}
	for _, s := range f.sessions {
		if activeOnly && s.Ended {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) UpsertGame(_ context.Context, g *store.GameRecord) error {
	f.games[g.ID] = *g
	return nil
}

func (f *fakeStore) ListGames(_ context.Context, sessionID string) ([]store.GameRecord, error) {
	out := []store.GameRecord{}
	for _, g := range f.games {
		if g.SessionID == sessionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) AppendChange(_ context.Context, c *store.Change) error {
	c.ID = int64(len(f.changes) + 1)
	f.changes = append(f.changes, *c)
	return nil
}

func (f *fakeStore) ListChanges(_ context.Context, sessionID string) ([]store.Change, error) {
	out := []store.Change{}
	for _, c := range f.changes {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLeaderboard(context.Context, *time.Time, *time.Time) ([]store.LeaderboardEntry, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

// driver applies operations with an engine and feeds the recorder the
// events a coordinator would emit for them.
type driver struct {
	t   *testing.T
	e   *session.Engine
	r   *Recorder
	s   *session.Session
	ctx context.Context
}

func newDriver(t *testing.T, st store.Store, mode session.Mode, courts int) *driver {
	logger, _ := test.NewNullLogger()
	r := New(st, logrus.NewEntry(logger))
	r.now = func() time.Time { return time.UnixMilli(42) }
	d := &driver{t: t, e: session.NewEngine(), r: r, ctx: context.Background()}
	d.s = d.e.NewSession("Club night", courts, mode)
	require.NoError(t, r.handleEvent(d.ctx, coordinator.SessionCreated{Session: d.s}))
	return d
}

func (d *driver) apply(op session.Operation) {
	d.t.Helper()
	before := d.s
	after, err := d.e.Apply(before, op)
	require.NoError(d.t, err, "%s", op.Kind())
	d.s = after
	require.NoError(d.t, d.r.handleEvent(d.ctx, coordinator.SessionUpdated{Before: before, After: after, Op: op}))
	if n := len(after.Games) - len(before.Games); n > 0 {
		for i := n - 1; i >= 0; i-- {
			require.NoError(d.t, d.r.handleEvent(d.ctx, coordinator.GameRecorded{SessionID: after.ID, Game: after.Games[i]}))
		}
	}
	if c, ok := op.(session.CorrectGame); ok {
		require.NoError(d.t, d.r.handleEvent(d.ctx, coordinator.GameCorrected{SessionID: after.ID, Game: *after.Game(c.GameID)}))
	}
	if after.Ended && !before.Ended {
		require.NoError(d.t, d.r.handleEvent(d.ctx, coordinator.SessionEnded{Session: after}))
	}
}

func (d *driver) playerID(name string) string {
	for _, p := range d.s.Players {
		if p.Name == name {
			return p.ID
		}
	}
	d.t.Fatalf("no player %s", name)
	return ""
}

func TestRecorderSavesSessionsAndPatches(t *testing.T) {
	st := newFakeStore()
	d := newDriver(t, st, session.ModeSingles, 1)

	rec, ok := st.sessions[d.s.ID]
	require.True(t, ok)
	assert.Equal(t, "Club night", rec.Name)
	assert.Equal(t, int64(42), rec.UpdatedAt)

	d.apply(session.AddPlayer{Name: "Ann"})
	d.apply(session.RenamePlayer{PlayerID: d.playerID("Ann"), NewName: "Anna"})

	require.Len(t, st.changes, 2)
	assert.Equal(t, "add_player", st.changes[0].Op)
	assert.Equal(t, "rename_player", st.changes[1].Op)

	var ops []map[string]any
	require.NoError(t, json.Unmarshal(st.changes[1].Patch, &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, "replace", ops[0]["op"])
	assert.Equal(t, "/players/0/name", ops[0]["path"])
	assert.Equal(t, "Anna", ops[0]["value"])

	saved, err := codec.Import(st.sessions[d.s.ID].Document)
	require.NoError(t, err)
	assert.Equal(t, d.s, saved)
}

func TestRecorderSkipsEmptyPatches(t *testing.T) {
	st := newFakeStore()
	d := newDriver(t, st, session.ModeSingles, 1)
	d.apply(session.AddPlayer{Name: "Ann"})

	// Renaming to the same name produces an identical document.
	d.apply(session.RenamePlayer{PlayerID: d.playerID("Ann"), NewName: "Ann"})

	assert.Len(t, st.changes, 1)
}

func TestRecorderSavesGames(t *testing.T) {
	st := newFakeStore()
	d := newDriver(t, st, session.ModeSingles, 1)
	d.apply(session.AddPlayer{Name: "Ann"})
	d.apply(session.AddPlayer{Name: "Bob"})
	d.apply(session.LinkAccount{PlayerID: d.playerID("Ann"), AccountUID: "uid-ann"})
	d.apply(session.AutoAssignCourt{CourtIndex: 0})
	d.apply(session.StartGame{CourtIndex: 0})
	d.apply(session.EndGame{CourtIndex: 0, ScoreA: 21, ScoreB: 12})

	require.Len(t, st.games, 1)
	g := d.s.Games[0]
	row := st.games[g.ID]
	assert.Equal(t, d.s.ID, row.SessionID)
	assert.Equal(t, "A", row.Winner)
	assert.Equal(t, 21, row.ScoreA)
	assert.Equal(t, []store.GamePlayer{
		{PlayerID: d.playerID("Ann"), Name: "Ann", AccountUID: "uid-ann", Team: "A"},
		{PlayerID: d.playerID("Bob"), Name: "Bob", Team: "B"},
	}, row.Players)

	d.apply(session.CorrectGame{GameID: g.ID, ScoreA: 12, ScoreB: 21})
	assert.Equal(t, "B", st.games[g.ID].Winner)

	d.apply(session.EndSession{})
	assert.True(t, st.sessions[d.s.ID].Ended)
	assert.NotContains(t, d.r.latest, d.s.ID)
}

func TestRecorderReportsStoreErrors(t *testing.T) {
	st := newFakeStore()
	st.failSave = errors.New("disk full")
	logger, _ := test.NewNullLogger()
	r := New(st, logrus.NewEntry(logger))

	s := session.NewEngine().NewSession("x", 0, session.ModeDoubles)
	err := r.handleEvent(context.Background(), coordinator.SessionCreated{Session: s})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	st := newFakeStore()
	logger, hook := test.NewNullLogger()
	r := New(st, logrus.NewEntry(logger))

	events := make(chan coordinator.Event, 1)
	s := session.NewEngine().NewSession("x", 0, session.ModeDoubles)
	events <- coordinator.SessionCreated{Session: s}
	close(events)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background(), events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop")
	}
	assert.Contains(t, st.sessions, s.ID)
	assert.Equal(t, "Recorder started", hook.Entries[0].Message)
}

func TestRecorderWithSQLite(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "club.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	d := newDriver(t, st, session.ModeDoubles, 1)
	for _, name := range []string{"Ann", "Bob", "Cat", "Dov"} {
		d.apply(session.AddPlayer{Name: name})
	}
	d.apply(session.AutoAssignCourt{CourtIndex: 0})
	d.apply(session.StartGame{CourtIndex: 0})
	d.apply(session.EndGame{CourtIndex: 0, ScoreA: 21, ScoreB: 19})

	games, err := st.ListGames(ctx, d.s.ID)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Len(t, games[0].Players, 4)

	changes, err := st.ListChanges(ctx, d.s.ID)
	require.NoError(t, err)
	assert.Len(t, changes, 7)

	loaded, err := Load(ctx, st)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, d.s, loaded[0])

	d.apply(session.EndSession{})
	loaded, err = Load(ctx, st)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
