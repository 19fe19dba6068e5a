package store

import (
	"context"
	"time"
)

// SessionRecord is the persisted form of a session: a few columns for
// listing plus the full exported document. Times are Unix milliseconds.
type SessionRecord struct {
	ID        string
	Name      string
	CreatedAt int64
	Ended     bool
	EndedAt   *int64
	UpdatedAt int64
	Document  []byte
}

type GameRecord struct {
	ID         string
	SessionID  string
	CourtIndex int
	EndedAt    int64
	StartedAt  *int64
	DurationMs *int64
	ScoreA     int
	ScoreB     int
	Winner     string // "A", "B" or "draw"
	Voided     bool
	Players    []GamePlayer // Side A first, in recorded order
}

type GamePlayer struct {
	PlayerID   string
	Name       string
	AccountUID string
	Team       string
}

// Change is one RFC 6902 patch between consecutive session documents.
type Change struct {
	ID        int64
	SessionID string
	Op        string
	Patch     []byte
	CreatedAt int64
}

type Store interface {
	SaveSession(ctx context.Context, s *SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (*SessionRecord, error)
	ListSessions(ctx context.Context, activeOnly bool) ([]SessionRecord, error)

	UpsertGame(ctx context.Context, g *GameRecord) error
	ListGames(ctx context.Context, sessionID string) ([]GameRecord, error)

	AppendChange(ctx context.Context, c *Change) error
	ListChanges(ctx context.Context, sessionID string) ([]Change, error)

	GetLeaderboard(ctx context.Context, startDate, endDate *time.Time) ([]LeaderboardEntry, error)

	Close() error
}

// LeaderboardEntry aggregates non-voided games across sessions. Players
// linked to an account are grouped by account uid, others by player id.
type LeaderboardEntry struct {
	Key     string
	Name    string
	Wins    int
	Losses  int
	Draws   int
	Total   int
	WinRate float64
	Streak  int // Positive = win streak, negative = loss streak
}
