package session

// SetExcluded adds a player to, or removes them from, the auto-assign
// exclusion list.
type SetExcluded struct {
	PlayerID string
	Excluded bool
}

func (op SetExcluded) Kind() string { return "set_excluded" }

func (op SetExcluded) apply(_ *Engine, s *Session) error {
	if _, err := playerAt(s, op.PlayerID); err != nil {
		return err
	}
	s.AutoAssignExclude = without(s.AutoAssignExclude, op.PlayerID)
	if op.Excluded {
		s.AutoAssignExclude = append(s.AutoAssignExclude, op.PlayerID)
	}
	return nil
}

// AddBlacklistPair keeps two players off the same team when auto-assigning.
// Pairs are symmetric.
type AddBlacklistPair struct {
	PlayerA string
	PlayerB string
}

func (op AddBlacklistPair) Kind() string { return "add_blacklist_pair" }

func (op AddBlacklistPair) apply(_ *Engine, s *Session) error {
	if op.PlayerA == op.PlayerB {
		return reject(ErrInvalidPair, "a player cannot be paired with themselves")
	}
	if _, err := playerAt(s, op.PlayerA); err != nil {
		return err
	}
	if _, err := playerAt(s, op.PlayerB); err != nil {
		return err
	}
	if blacklistIndex(s, op.PlayerA, op.PlayerB) >= 0 {
		return nil
	}
	s.AutoAssignBlacklist.Pairs = append(s.AutoAssignBlacklist.Pairs, [2]string{op.PlayerA, op.PlayerB})
	return nil
}

type RemoveBlacklistPair struct {
	PlayerA string
	PlayerB string
}

func (op RemoveBlacklistPair) Kind() string { return "remove_blacklist_pair" }

func (op RemoveBlacklistPair) apply(_ *Engine, s *Session) error {
	i := blacklistIndex(s, op.PlayerA, op.PlayerB)
	if i < 0 {
		return nil
	}
	pairs := s.AutoAssignBlacklist.Pairs
	s.AutoAssignBlacklist.Pairs = append(pairs[:i:i], pairs[i+1:]...)
	return nil
}

func blacklistIndex(s *Session, a, b string) int {
	for i, p := range s.AutoAssignBlacklist.Pairs {
		if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
			return i
		}
	}
	return -1
}

type SetBalanceGender struct {
	Enabled bool
}

func (op SetBalanceGender) Kind() string { return "set_balance_gender" }

func (op SetBalanceGender) apply(_ *Engine, s *Session) error {
	s.AutoAssignConfig.BalanceGender = op.Enabled
	return nil
}
