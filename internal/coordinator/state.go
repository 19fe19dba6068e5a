package coordinator

import "github.com/edvart/badminton-club/internal/session"

// State holds the current value of every session the coordinator owns.
// Sessions are immutable values; an update swaps the pointer.
type State struct {
	Sessions map[string]*session.Session
	Order    []string // Creation order
}

func NewState() *State {
	return &State{
		Sessions: make(map[string]*session.Session),
		Order:    []string{},
	}
}

func (s *State) Get(id string) *session.Session {
	return s.Sessions[id]
}

// Put stores a session, appending it to the order when it is new.
func (s *State) Put(sess *session.Session) {
	if _, ok := s.Sessions[sess.ID]; !ok {
		s.Order = append(s.Order, sess.ID)
	}
	s.Sessions[sess.ID] = sess
}

// List returns sessions in creation order, optionally skipping ended ones.
func (s *State) List(activeOnly bool) []*session.Session {
	out := make([]*session.Session, 0, len(s.Order))
	for _, id := range s.Order {
		sess := s.Sessions[id]
		if activeOnly && sess.Ended {
			continue
		}
		out = append(out, sess)
	}
	return out
}

// FindByAccount returns the session and player linked to an account uid in
// any active session. An empty uid never matches.
func (s *State) FindByAccount(uid string) (*session.Session, *session.Player) {
	if uid == "" {
		return nil, nil
	}
	for _, id := range s.Order {
		sess := s.Sessions[id]
		if sess.Ended {
			continue
		}
		for i := range sess.Players {
			if sess.Players[i].AccountUID == uid {
				return sess, &sess.Players[i]
			}
		}
	}
	return nil, nil
}
