package session

import "strings"

// AddPlayer appends a new player with a fresh id.
type AddPlayer struct {
	Name   string
	Gender Gender
}

func (op AddPlayer) Kind() string { return "add_player" }

func (op AddPlayer) apply(e *Engine, s *Session) error {
	name := strings.TrimSpace(op.Name)
	if name == "" {
		return reject(ErrInvalidName, "player name is empty")
	}
	if !op.Gender.Valid() {
		return reject(ErrInvalidGender, "%q", op.Gender)
	}
	s.Players = append(s.Players, Player{
		ID:     e.NewID(),
		Name:   name,
		Gender: op.Gender,
	})
	return nil
}

// RemovePlayer deletes a player and every reference to them. A player on a
// court with a game in progress cannot be removed.
type RemovePlayer struct {
	PlayerID string
}

func (op RemovePlayer) Kind() string { return "remove_player" }

func (op RemovePlayer) apply(_ *Engine, s *Session) error {
	if _, err := playerAt(s, op.PlayerID); err != nil {
		return err
	}
	if s.Playing(op.PlayerID) {
		return reject(ErrCourtLocked, "player %s is playing", op.PlayerID)
	}
	for i := range s.Courts {
		s.Courts[i].unstage(op.PlayerID)
		s.Courts[i].unqueue(op.PlayerID)
	}
	s.AutoAssignExclude = without(s.AutoAssignExclude, op.PlayerID)
	pairs := make([][2]string, 0, len(s.AutoAssignBlacklist.Pairs))
	for _, p := range s.AutoAssignBlacklist.Pairs {
		if p[0] != op.PlayerID && p[1] != op.PlayerID {
			pairs = append(pairs, p)
		}
	}
	s.AutoAssignBlacklist.Pairs = pairs

	players := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.ID != op.PlayerID {
			players = append(players, p)
		}
	}
	s.Players = players
	return nil
}

// RenamePlayer changes a player's display name. Recorded games keep the
// name they were played under.
type RenamePlayer struct {
	PlayerID string
	NewName  string
}

func (op RenamePlayer) Kind() string { return "rename_player" }

func (op RenamePlayer) apply(_ *Engine, s *Session) error {
	p, err := playerAt(s, op.PlayerID)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(op.NewName)
	if name == "" {
		return reject(ErrInvalidName, "player name is empty")
	}
	p.Name = name
	return nil
}

type SetPlayerGender struct {
	PlayerID string
	Gender   Gender
}

func (op SetPlayerGender) Kind() string { return "set_player_gender" }

func (op SetPlayerGender) apply(_ *Engine, s *Session) error {
	p, err := playerAt(s, op.PlayerID)
	if err != nil {
		return err
	}
	if !op.Gender.Valid() {
		return reject(ErrInvalidGender, "%q", op.Gender)
	}
	p.Gender = op.Gender
	return nil
}

// LinkAccount ties a player to an external account. An account can back at
// most one player in a session.
type LinkAccount struct {
	PlayerID   string
	AccountUID string
}

func (op LinkAccount) Kind() string { return "link_account" }

func (op LinkAccount) apply(_ *Engine, s *Session) error {
	p, err := playerAt(s, op.PlayerID)
	if err != nil {
		return err
	}
	uid := strings.TrimSpace(op.AccountUID)
	if uid == "" {
		return reject(ErrInvalidAccount, "account uid is empty")
	}
	for _, other := range s.Players {
		if other.ID != op.PlayerID && other.AccountUID == uid {
			return reject(ErrAccountInUse, "account linked to player %s", other.ID)
		}
	}
	p.AccountUID = uid
	return nil
}

type UnlinkAccount struct {
	PlayerID string
}

func (op UnlinkAccount) Kind() string { return "unlink_account" }

func (op UnlinkAccount) apply(_ *Engine, s *Session) error {
	p, err := playerAt(s, op.PlayerID)
	if err != nil {
		return err
	}
	p.AccountUID = ""
	return nil
}
