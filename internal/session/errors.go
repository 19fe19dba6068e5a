package session

import (
	"errors"
	"fmt"
)

// Reason classifies why an operation was rejected.
type Reason string

const (
	ReasonSessionEnded        Reason = "session_ended"
	ReasonCourtNotFound       Reason = "court_not_found"
	ReasonCourtLocked         Reason = "court_locked"
	ReasonCapacityExceeded    Reason = "capacity_exceeded"
	ReasonNotReady            Reason = "not_ready"
	ReasonPlayerBusyElsewhere Reason = "player_busy_elsewhere"
	ReasonInvalidScore        Reason = "invalid_score"
	ReasonPlayerNotFound      Reason = "player_not_found"
	ReasonGameNotFound        Reason = "game_not_found"
	ReasonNotOnCourt          Reason = "not_on_court"
	ReasonInvalidName         Reason = "invalid_name"
	ReasonInvalidGender       Reason = "invalid_gender"
	ReasonInvalidMode         Reason = "invalid_mode"
	ReasonInvalidTeam         Reason = "invalid_team"
	ReasonInvalidPair         Reason = "invalid_pair"
	ReasonInvalidAccount      Reason = "invalid_account"
	ReasonAccountInUse        Reason = "account_in_use"
	ReasonInsufficientPlayers Reason = "insufficient_players"
)

// Rejection is returned when an operation is not allowed in the current
// state. The session is left untouched.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

// Is matches any rejection with the same reason, so callers can compare
// against the sentinels below with errors.Is.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

var (
	ErrSessionEnded        = &Rejection{Reason: ReasonSessionEnded}
	ErrCourtNotFound       = &Rejection{Reason: ReasonCourtNotFound}
	ErrCourtLocked         = &Rejection{Reason: ReasonCourtLocked}
	ErrCapacityExceeded    = &Rejection{Reason: ReasonCapacityExceeded}
	ErrNotReady            = &Rejection{Reason: ReasonNotReady}
	ErrPlayerBusyElsewhere = &Rejection{Reason: ReasonPlayerBusyElsewhere}
	ErrInvalidScore        = &Rejection{Reason: ReasonInvalidScore}
	ErrPlayerNotFound      = &Rejection{Reason: ReasonPlayerNotFound}
	ErrGameNotFound        = &Rejection{Reason: ReasonGameNotFound}
	ErrNotOnCourt          = &Rejection{Reason: ReasonNotOnCourt}
	ErrInvalidName         = &Rejection{Reason: ReasonInvalidName}
	ErrInvalidGender       = &Rejection{Reason: ReasonInvalidGender}
	ErrInvalidMode         = &Rejection{Reason: ReasonInvalidMode}
	ErrInvalidTeam         = &Rejection{Reason: ReasonInvalidTeam}
	ErrInvalidPair         = &Rejection{Reason: ReasonInvalidPair}
	ErrInvalidAccount      = &Rejection{Reason: ReasonInvalidAccount}
	ErrAccountInUse        = &Rejection{Reason: ReasonAccountInUse}
	ErrInsufficientPlayers = &Rejection{Reason: ReasonInsufficientPlayers}
)

func reject(base *Rejection, format string, args ...any) error {
	return &Rejection{Reason: base.Reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err.
func ReasonOf(err error) (Reason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}

// IsRejection reports whether err is a business-rule rejection rather than
// an infrastructure failure.
func IsRejection(err error) bool {
	_, ok := ReasonOf(err)
	return ok
}
