// Package codec converts sessions to and from their JSON document form.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/edvart/badminton-club/internal/session"
)

func Decode[T any](bz []byte) (T, error) {
	v := new(T)
	if err := json.Unmarshal(bz, v); err != nil {
		return *v, eris.Wrap(err, "decode")
	}
	return *v, nil
}

func Encode(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "encode")
	}
	return bz, nil
}

// Export encodes the full session document.
func Export(s *session.Session) ([]byte, error) {
	if s == nil {
		return nil, eris.New("nil session")
	}
	bz, err := Encode(s)
	if err != nil {
		return nil, eris.Wrapf(err, "export session %s", s.ID)
	}
	return bz, nil
}

// Import decodes a session document and checks its structure. A document
// that decodes but breaks a session invariant is refused.
func Import(bz []byte) (*session.Session, error) {
	s, err := Decode[session.Session](bz)
	if err != nil {
		return nil, eris.Wrap(err, "import session")
	}
	if s.ID == "" {
		return nil, eris.New("import session: missing id")
	}
	if err := s.Validate(); err != nil {
		return nil, eris.Wrapf(err, "import session %s", s.ID)
	}
	return &s, nil
}
