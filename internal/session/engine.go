package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation is a single organizer action. Implementations are plain values;
// apply mutates a private clone of the session.
type Operation interface {
	Kind() string
	apply(e *Engine, s *Session) error
}

// Engine applies operations. It carries the clock and id source so tests can
// pin both.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

// NewEngine returns an engine backed by the wall clock and random UUIDs.
func NewEngine() *Engine {
	return &Engine{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (e *Engine) nowMs() int64 {
	return e.Now().UnixMilli()
}

// NewSession creates an empty session with the given number of courts.
func (e *Engine) NewSession(name string, courts int, mode Mode) *Session {
	if courts < 0 {
		panic(fmt.Sprintf("session: negative court count %d", courts))
	}
	if mode == "" {
		mode = ModeDoubles
	}
	if !mode.Valid() {
		panic(fmt.Sprintf("session: invalid court mode %q", mode))
	}
	s := &Session{
		ID:                  e.NewID(),
		Name:                name,
		CreatedAt:           e.nowMs(),
		Players:             []Player{},
		Courts:              make([]Court, 0, courts),
		Games:               []Game{},
		AutoAssignExclude:   []string{},
		AutoAssignBlacklist: Blacklist{Pairs: [][2]string{}},
	}
	for i := 0; i < courts; i++ {
		s.Courts = append(s.Courts, newCourt(i, mode))
	}
	return s
}

// Apply runs op against s. On success it returns a new session value; on
// rejection it returns s itself and a *Rejection. s is never modified.
//
// A nil session or operation is a programming error and panics.
func (e *Engine) Apply(s *Session, op Operation) (*Session, error) {
	if s == nil {
		panic("session: Apply on nil session")
	}
	if op == nil {
		panic("session: Apply with nil operation")
	}
	if s.Ended {
		if _, ok := op.(EndSession); ok {
			return s, nil
		}
		return s, reject(ErrSessionEnded, "%s", op.Kind())
	}
	next := s.Clone()
	if err := op.apply(e, next); err != nil {
		return s, err
	}
	return next, nil
}

// courtAt resolves a court index. Negative indexes can never exist and
// panic; indexes past the end are rejected.
func courtAt(s *Session, index int) (*Court, error) {
	if index < 0 {
		panic(fmt.Sprintf("session: negative court index %d", index))
	}
	if index >= len(s.Courts) {
		return nil, reject(ErrCourtNotFound, "court %d of %d", index, len(s.Courts))
	}
	return &s.Courts[index], nil
}

func playerAt(s *Session, id string) (*Player, error) {
	p := s.Player(id)
	if p == nil {
		return nil, reject(ErrPlayerNotFound, "player %s", id)
	}
	return p, nil
}
