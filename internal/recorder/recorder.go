// Package recorder persists coordinator events: session documents, change
// patches between them and one row per recorded game.
package recorder

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/wI2L/jsondiff"

	"github.com/edvart/badminton-club/internal/codec"
	"github.com/edvart/badminton-club/internal/coordinator"
	"github.com/edvart/badminton-club/internal/session"
	"github.com/edvart/badminton-club/internal/store"
)

// Recorder saves sessions and games to the store.
type Recorder struct {
	store  store.Store
	log    *logrus.Entry
	now    func() time.Time
	latest map[string]*session.Session
}

// New creates a new recorder.
func New(s store.Store, log *logrus.Entry) *Recorder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Recorder{
		store:  s,
		log:    log.WithField("component", "recorder"),
		now:    time.Now,
		latest: make(map[string]*session.Session),
	}
}

// Run listens for coordinator events and records them until ctx is done or
// the channel is closed.
func (r *Recorder) Run(ctx context.Context, events <-chan coordinator.Event) {
	r.log.Info("Recorder started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Recorder shutting down")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := r.handleEvent(ctx, event); err != nil {
				r.log.Errorf("Recorder: %v", err)
			}
		}
	}
}

func (r *Recorder) handleEvent(ctx context.Context, event coordinator.Event) error {
	switch e := event.(type) {
	case coordinator.SessionCreated:
		r.latest[e.Session.ID] = e.Session
		return r.saveSession(ctx, e.Session)
	case coordinator.SessionUpdated:
		r.latest[e.After.ID] = e.After
		if err := r.saveSession(ctx, e.After); err != nil {
			return err
		}
		return r.appendChange(ctx, e)
	case coordinator.GameRecorded:
		return r.saveGame(ctx, e.SessionID, e.Game)
	case coordinator.GameCorrected:
		return r.saveGame(ctx, e.SessionID, e.Game)
	case coordinator.SessionEnded:
		delete(r.latest, e.Session.ID)
		r.log.WithField("session", e.Session.ID).Infof("Recorder: session %s closed after %d games", e.Session.Name, len(e.Session.Games))
	}
	return nil
}

func (r *Recorder) saveSession(ctx context.Context, s *session.Session) error {
	doc, err := codec.Export(s)
	if err != nil {
		return err
	}
	rec := &store.SessionRecord{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Ended:     s.Ended,
		EndedAt:   s.EndedAt,
		UpdatedAt: r.now().UnixMilli(),
		Document:  doc,
	}
	if err := r.store.SaveSession(ctx, rec); err != nil {
		return eris.Wrapf(err, "failed to save session %s", s.ID)
	}
	return nil
}

func (r *Recorder) appendChange(ctx context.Context, e coordinator.SessionUpdated) error {
	patch, err := Diff(e.Before, e.After)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}
	bz, err := codec.Encode(patch)
	if err != nil {
		return eris.Wrap(err, "encode patch")
	}
	change := &store.Change{
		SessionID: e.After.ID,
		Op:        e.Op.Kind(),
		Patch:     bz,
		CreatedAt: r.now().UnixMilli(),
	}
	if err := r.store.AppendChange(ctx, change); err != nil {
		return eris.Wrapf(err, "failed to append change to session %s", e.After.ID)
	}
	r.log.WithFields(logrus.Fields{"session": e.After.ID, "op": e.Op.Kind()}).
		Debugf("Recorder: stored %d patch operations", len(patch))
	return nil
}

// Diff returns the RFC 6902 patch that turns the before document into the
// after document.
func Diff(before, after *session.Session) (jsondiff.Patch, error) {
	a, err := codec.Export(before)
	if err != nil {
		return nil, err
	}
	b, err := codec.Export(after)
	if err != nil {
		return nil, err
	}
	patch, err := jsondiff.CompareJSON(a, b)
	if err != nil {
		return nil, eris.Wrap(err, "compare session documents")
	}
	return patch, nil
}

func (r *Recorder) saveGame(ctx context.Context, sessionID string, g session.Game) error {
	rec := &store.GameRecord{
		ID:         g.ID,
		SessionID:  sessionID,
		CourtIndex: g.CourtIndex,
		EndedAt:    g.EndedAt,
		StartedAt:  g.StartedAt,
		DurationMs: g.DurationMs,
		ScoreA:     g.ScoreA,
		ScoreB:     g.ScoreB,
		Winner:     string(g.Winner),
		Voided:     g.Voided,
		Players:    make([]store.GamePlayer, 0, len(g.SideA)+len(g.SideB)),
	}
	s := r.latest[sessionID]
	add := func(ids, names []string, team session.Team) {
		for i, id := range ids {
			p := store.GamePlayer{PlayerID: id, Name: id, Team: string(team)}
			if i < len(names) {
				p.Name = names[i]
			}
			if s != nil {
				if player := s.Player(id); player != nil {
					p.AccountUID = player.AccountUID
				}
			}
			rec.Players = append(rec.Players, p)
		}
	}
	add(g.SideA, g.SideANames, session.TeamA)
	add(g.SideB, g.SideBNames, session.TeamB)

	if err := r.store.UpsertGame(ctx, rec); err != nil {
		return eris.Wrapf(err, "failed to save game %s", g.ID)
	}
	r.log.WithField("session", sessionID).Infof("Recorder: recorded game %s", g.ID)
	return nil
}

// Load returns the active sessions persisted in the store, ready to be
// restored into a coordinator.
func Load(ctx context.Context, st store.Store) ([]*session.Session, error) {
	records, err := st.ListSessions(ctx, true)
	if err != nil {
		return nil, err
	}
	sessions := make([]*session.Session, 0, len(records))
	for _, rec := range records {
		s, err := codec.Import(rec.Document)
		if err != nil {
			return nil, eris.Wrapf(err, "load session %s", rec.ID)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
