package coordinator

import (
	"context"
	"strings"

	"github.com/edvart/badminton-club/internal/session"
)

// send delivers cmd and waits for its reply on resp, giving up when ctx is
// done first.
func send[T any](ctx context.Context, c *Coordinator, cmd Command, resp chan T) (T, error) {
	var zero T
	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-resp:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Create starts a new session and returns it.
func (c *Coordinator) Create(ctx context.Context, name string, courts int, mode session.Mode) (*session.Session, error) {
	resp := make(chan Result, 1)
	res, err := send(ctx, c, CreateSession{Name: name, Courts: courts, Mode: mode, Response: resp}, resp)
	if err != nil {
		return nil, err
	}
	return res.Session, res.Err
}

// Do applies op to a session. On rejection the returned session is the
// unchanged current value and the error is the engine's *session.Rejection.
func (c *Coordinator) Do(ctx context.Context, sessionID string, op session.Operation) (*session.Session, error) {
	resp := make(chan Result, 1)
	res, err := send(ctx, c, Apply{SessionID: sessionID, Op: op, Response: resp}, resp)
	if err != nil {
		return nil, err
	}
	return res.Session, res.Err
}

// Load restores persisted sessions.
func (c *Coordinator) Load(ctx context.Context, sessions []*session.Session) error {
	resp := make(chan error, 1)
	res, err := send(ctx, c, Restore{Sessions: sessions, Response: resp}, resp)
	if err != nil {
		return err
	}
	return res
}

// Get returns the current value of a session.
func (c *Coordinator) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	resp := make(chan *session.Session, 1)
	s, err := send(ctx, c, getSessionCmd{SessionID: sessionID, Response: resp}, resp)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns all sessions in creation order.
func (c *Coordinator) List(ctx context.Context, activeOnly bool) ([]*session.Session, error) {
	resp := make(chan []*session.Session, 1)
	return send(ctx, c, listSessionsCmd{ActiveOnly: activeOnly, Response: resp}, resp)
}

// FindAccount returns the session id and a copy of the player linked to an
// account in any active session. The player is nil when none is linked.
func (c *Coordinator) FindAccount(ctx context.Context, uid string) (string, *session.Player, error) {
	resp := make(chan accountLookup, 1)
	res, err := send(ctx, c, findAccountCmd{AccountUID: strings.TrimSpace(uid), Response: resp}, resp)
	if err != nil {
		return "", nil, err
	}
	return res.SessionID, res.Player, nil
}
