package coordinator

import "github.com/edvart/badminton-club/internal/session"

type Event interface {
	event() // marker method
}

type SessionCreated struct {
	Session *session.Session
}

func (SessionCreated) event() {}

// SessionUpdated is emitted for every accepted operation. Before and After
// are distinct immutable values.
type SessionUpdated struct {
	Before *session.Session
	After  *session.Session
	Op     session.Operation
}

func (SessionUpdated) event() {}

// GameRecorded is emitted for each game an operation appended to the
// history, voided games included.
type GameRecorded struct {
	SessionID string
	Game      session.Game
}

func (GameRecorded) event() {}

type GameCorrected struct {
	SessionID string
	Game      session.Game
}

func (GameCorrected) event() {}

type SessionEnded struct {
	Session *session.Session
}

func (SessionEnded) event() {}
