// Package coordinator serializes every change to the club's sessions
// through a single goroutine and fans the results out as events.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/edvart/badminton-club/internal/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilOperation    = errors.New("nil operation")
)

const (
	commandBuffer = 100
	eventBuffer   = 1000
)

// Coordinator owns all mutable state and processes commands sequentially.
type Coordinator struct {
	commands chan Command
	state    *State
	engine   *session.Engine
	log      *logrus.Entry

	mu          sync.Mutex
	subscribers []chan Event
}

// New creates a new Coordinator. A nil engine uses session.NewEngine.
func New(engine *session.Engine, log *logrus.Entry) *Coordinator {
	if engine == nil {
		engine = session.NewEngine()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Coordinator{
		commands: make(chan Command, commandBuffer),
		state:    NewState(),
		engine:   engine,
		log:      log.WithField("component", "coordinator"),
	}
}

// Send submits a command to the coordinator.
func (c *Coordinator) Send(cmd Command) {
	c.commands <- cmd
}

// Subscribe creates a new event channel for a consumer.
// The returned channel will receive all events emitted by the coordinator.
func (c *Coordinator) Subscribe() <-chan Event {
	ch := make(chan Event, eventBuffer)
	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.mu.Unlock()
	return ch
}

// Run starts the coordinator loop. It blocks until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Info("Coordinator started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("Coordinator shutting down")
			return
		case cmd := <-c.commands:
			c.handleCommand(cmd)
		}
	}
}

func (c *Coordinator) emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- e:
		default:
			c.log.WithField("event", fmt.Sprintf("%T", e)).Warn("Subscriber event channel full, dropping event")
		}
	}
}

func (c *Coordinator) handleCommand(cmd Command) {
	switch cmd := cmd.(type) {
	case CreateSession:
		s, err := c.handleCreateSession(cmd)
		if cmd.Response != nil {
			cmd.Response <- Result{Session: s, Err: err}
		}
	case Apply:
		s, err := c.handleApply(cmd)
		if cmd.Response != nil {
			cmd.Response <- Result{Session: s, Err: err}
		}
	case Restore:
		err := c.handleRestore(cmd)
		if cmd.Response != nil {
			cmd.Response <- err
		}
	case getSessionCmd:
		cmd.Response <- c.state.Get(cmd.SessionID)
	case listSessionsCmd:
		cmd.Response <- c.state.List(cmd.ActiveOnly)
	case findAccountCmd:
		var res accountLookup
		if s, p := c.state.FindByAccount(cmd.AccountUID); s != nil {
			player := *p
			res = accountLookup{SessionID: s.ID, Player: &player}
		}
		cmd.Response <- res
	}
}

func (c *Coordinator) handleCreateSession(cmd CreateSession) (s *session.Session, err error) {
	mode := cmd.Mode
	if mode == "" {
		mode = session.ModeDoubles
	}
	if cmd.Courts < 0 {
		return nil, eris.Errorf("negative court count %d", cmd.Courts)
	}
	if !mode.Valid() {
		return nil, eris.Errorf("invalid court mode %q", mode)
	}

	s = c.engine.NewSession(cmd.Name, cmd.Courts, mode)
	c.state.Put(s)
	c.log.WithFields(logrus.Fields{"session": s.ID, "courts": cmd.Courts, "mode": mode}).
		Infof("Session %s created", s.Name)
	c.emit(SessionCreated{Session: s})
	return s, nil
}

func (c *Coordinator) handleApply(cmd Apply) (after *session.Session, err error) {
	if cmd.Op == nil {
		return nil, ErrNilOperation
	}
	before := c.state.Get(cmd.SessionID)
	if before == nil {
		return nil, ErrSessionNotFound
	}

	// The engine panics on caller bugs such as a negative court index.
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("session", cmd.SessionID).Errorf("Operation %s panicked: %v", cmd.Op.Kind(), r)
			after, err = before, eris.Errorf("operation %s: %v", cmd.Op.Kind(), r)
		}
	}()

	after, err = c.engine.Apply(before, cmd.Op)
	if err != nil {
		c.log.WithFields(logrus.Fields{"session": cmd.SessionID, "op": cmd.Op.Kind()}).
			Debugf("Operation rejected: %v", err)
		return before, err
	}
	if after == before {
		return after, nil
	}
	c.state.Put(after)
	c.log.WithFields(logrus.Fields{"session": cmd.SessionID, "op": cmd.Op.Kind()}).Debug("Operation applied")

	c.emit(SessionUpdated{Before: before, After: after, Op: cmd.Op})
	for _, g := range newGames(before, after) {
		c.log.WithField("session", after.ID).Infof("Game %s recorded on court %d (%d-%d)", g.ID, g.CourtIndex, g.ScoreA, g.ScoreB)
		c.emit(GameRecorded{SessionID: after.ID, Game: g})
	}
	if op, ok := cmd.Op.(session.CorrectGame); ok {
		if g := after.Game(op.GameID); g != nil {
			c.log.WithField("session", after.ID).Infof("Game %s corrected", g.ID)
			c.emit(GameCorrected{SessionID: after.ID, Game: *g})
		}
	}
	if after.Ended && !before.Ended {
		c.log.WithField("session", after.ID).Infof("Session %s ended with %d games", after.Name, len(after.Games))
		c.emit(SessionEnded{Session: after})
	}
	return after, nil
}

// newGames returns the games added to the front of the history, oldest
// first.
func newGames(before, after *session.Session) []session.Game {
	n := len(after.Games) - len(before.Games)
	if n <= 0 {
		return nil
	}
	out := make([]session.Game, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, after.Games[i])
	}
	return out
}

func (c *Coordinator) handleRestore(cmd Restore) error {
	for _, s := range cmd.Sessions {
		if s == nil {
			continue
		}
		if err := s.Validate(); err != nil {
			return eris.Wrapf(err, "restore session %s", s.ID)
		}
	}
	restored := 0
	for _, s := range cmd.Sessions {
		if s == nil || c.state.Get(s.ID) != nil {
			continue
		}
		c.state.Put(s)
		restored++
	}
	c.log.Infof("Restored %d sessions", restored)
	return nil
}
