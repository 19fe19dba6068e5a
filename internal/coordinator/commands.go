package coordinator

import "github.com/edvart/badminton-club/internal/session"

// Command is the interface for all commands sent to the coordinator.
type Command interface {
	command() // marker method
}

// Result carries the session produced by a command, or the reason it was
// refused.
type Result struct {
	Session *session.Session
	Err     error
}

// CreateSession starts a new session with empty courts of one mode.
type CreateSession struct {
	Name     string
	Courts   int
	Mode     session.Mode
	Response chan Result
}

func (CreateSession) command() {}

// Apply runs one operation against a session.
type Apply struct {
	SessionID string
	Op        session.Operation
	Response  chan Result
}

func (Apply) command() {}

// Restore loads previously persisted sessions without emitting events.
// Sessions already known to the coordinator are left untouched.
type Restore struct {
	Sessions []*session.Session
	Response chan error
}

func (Restore) command() {}

type getSessionCmd struct {
	SessionID string
	Response  chan *session.Session
}

func (getSessionCmd) command() {}

type listSessionsCmd struct {
	ActiveOnly bool
	Response   chan []*session.Session
}

func (listSessionsCmd) command() {}

type findAccountCmd struct {
	AccountUID string
	Response   chan accountLookup
}

func (findAccountCmd) command() {}

type accountLookup struct {
	SessionID string
	Player    *session.Player
}
