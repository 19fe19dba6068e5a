package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open database")
	}
	// A single connection keeps the pragmas below in effect for every query.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "failed to run %q", pragma)
		}
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to run migrations")
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			ended INTEGER NOT NULL DEFAULT 0,
			ended_at INTEGER,
			updated_at INTEGER NOT NULL,
			document TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended ON sessions(ended)`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			court_index INTEGER NOT NULL,
			ended_at INTEGER NOT NULL,
			started_at INTEGER,
			duration_ms INTEGER,
			score_a INTEGER NOT NULL,
			score_b INTEGER NOT NULL,
			winner TEXT NOT NULL,
			voided INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_session ON games(session_id, ended_at)`,
		`CREATE TABLE IF NOT EXISTS game_players (
			game_id TEXT NOT NULL REFERENCES games(id),
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			account_uid TEXT NOT NULL DEFAULT '',
			team TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (game_id, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS session_changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			op TEXT NOT NULL,
			patch TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return eris.Wrap(err, "migration failed")
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSession creates or replaces a session row.
func (s *SQLiteStore) SaveSession(ctx context.Context, rec *SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, name, created_at, ended, ended_at, updated_at, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 	name = excluded.name,
		 	ended = excluded.ended,
		 	ended_at = excluded.ended_at,
		 	updated_at = excluded.updated_at,
		 	document = excluded.document`,
		rec.ID, rec.Name, rec.CreatedAt, rec.Ended, rec.EndedAt, rec.UpdatedAt, string(rec.Document),
	)
	return eris.Wrapf(err, "save session %s", rec.ID)
}

const sessionColumns = `id, name, created_at, ended, ended_at, updated_at, document`

func scanSession(row interface{ Scan(...any) error }) (*SessionRecord, error) {
	var rec SessionRecord
	var endedAt sql.NullInt64
	var doc string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.Ended, &endedAt, &rec.UpdatedAt, &doc); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		rec.EndedAt = &endedAt.Int64
	}
	rec.Document = []byte(doc)
	return &rec, nil
}

// GetSession retrieves a session by id. It returns nil when none exists.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	rec, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "get session %s", sessionID)
	}
	return rec, nil
}

// ListSessions returns sessions oldest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, activeOnly bool) ([]SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	if activeOnly {
		query += ` WHERE ended = 0`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "list sessions")
	}
	defer rows.Close()

	records := []SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan session")
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "list sessions")
}

// UpsertGame writes a game and replaces its player rows. A corrected game
// overwrites the earlier row.
func (s *SQLiteStore) UpsertGame(ctx context.Context, g *GameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, session_id, court_index, ended_at, started_at, duration_ms, score_a, score_b, winner, voided)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 	court_index = excluded.court_index,
		 	ended_at = excluded.ended_at,
		 	started_at = excluded.started_at,
		 	duration_ms = excluded.duration_ms,
		 	score_a = excluded.score_a,
		 	score_b = excluded.score_b,
		 	winner = excluded.winner,
		 	voided = excluded.voided`,
		g.ID, g.SessionID, g.CourtIndex, g.EndedAt, g.StartedAt, g.DurationMs,
		g.ScoreA, g.ScoreB, g.Winner, g.Voided,
	)
	if err != nil {
		return eris.Wrapf(err, "upsert game %s", g.ID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM game_players WHERE game_id = ?`, g.ID); err != nil {
		return eris.Wrapf(err, "clear players of game %s", g.ID)
	}
	for i, p := range g.Players {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_players (game_id, player_id, name, account_uid, team, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, p.PlayerID, p.Name, p.AccountUID, p.Team, i,
		)
		if err != nil {
			return eris.Wrapf(err, "add player %s to game %s", p.PlayerID, g.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "commit")
}

// ListGames returns the games of a session, newest first.
func (s *SQLiteStore) ListGames(ctx context.Context, sessionID string) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, court_index, ended_at, started_at, duration_ms, score_a, score_b, winner, voided
		 FROM games WHERE session_id = ?
		 ORDER BY ended_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, eris.Wrapf(err, "list games of %s", sessionID)
	}
	defer rows.Close()

	games := []GameRecord{}
	index := make(map[string]int)
	for rows.Next() {
		var g GameRecord
		var startedAt, duration sql.NullInt64
		if err := rows.Scan(&g.ID, &g.SessionID, &g.CourtIndex, &g.EndedAt, &startedAt, &duration,
			&g.ScoreA, &g.ScoreB, &g.Winner, &g.Voided); err != nil {
			return nil, eris.Wrap(err, "scan game")
		}
		if startedAt.Valid {
			g.StartedAt = &startedAt.Int64
		}
		if duration.Valid {
			g.DurationMs = &duration.Int64
		}
		g.Players = []GamePlayer{}
		index[g.ID] = len(games)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "list games")
	}
	rows.Close()

	// Players are read in a second pass; the store holds one connection.
	prows, err := s.db.QueryContext(ctx,
		`SELECT gp.game_id, gp.player_id, gp.name, gp.account_uid, gp.team
		 FROM game_players gp
		 JOIN games g ON gp.game_id = g.id
		 WHERE g.session_id = ?
		 ORDER BY gp.game_id, gp.position`, sessionID)
	if err != nil {
		return nil, eris.Wrapf(err, "list game players of %s", sessionID)
	}
	defer prows.Close()

	for prows.Next() {
		var gameID string
		var p GamePlayer
		if err := prows.Scan(&gameID, &p.PlayerID, &p.Name, &p.AccountUID, &p.Team); err != nil {
			return nil, eris.Wrap(err, "scan game player")
		}
		if i, ok := index[gameID]; ok {
			games[i].Players = append(games[i].Players, p)
		}
	}
	return games, eris.Wrap(prows.Err(), "list game players")
}

// AppendChange stores a patch and fills in its id.
func (s *SQLiteStore) AppendChange(ctx context.Context, c *Change) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_changes (session_id, op, patch, created_at) VALUES (?, ?, ?, ?)`,
		c.SessionID, c.Op, string(c.Patch), c.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "append change to %s", c.SessionID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "change id")
	}
	c.ID = id
	return nil
}

// ListChanges returns the patches of a session in the order they were made.
func (s *SQLiteStore) ListChanges(ctx context.Context, sessionID string) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, op, patch, created_at FROM session_changes
		 WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, eris.Wrapf(err, "list changes of %s", sessionID)
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var c Change
		var patch string
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Op, &patch, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "scan change")
		}
		c.Patch = []byte(patch)
		changes = append(changes, c)
	}
	return changes, eris.Wrap(rows.Err(), "list changes")
}

const playerKey = `COALESCE(NULLIF(gp.account_uid, ''), gp.player_id)`

// GetLeaderboard retrieves player stats across all sessions.
func (s *SQLiteStore) GetLeaderboard(ctx context.Context, startDate, endDate *time.Time) ([]LeaderboardEntry, error) {
	filter, args := dateFilter(startDate, endDate)
	query := `
		SELECT
			` + playerKey + ` AS player_key,
			MAX(gp.name),
			COUNT(*) AS total,
			SUM(CASE WHEN g.winner = gp.team THEN 1 ELSE 0 END) AS wins,
			SUM(CASE WHEN g.winner != 'draw' AND g.winner != gp.team THEN 1 ELSE 0 END) AS losses,
			SUM(CASE WHEN g.winner = 'draw' THEN 1 ELSE 0 END) AS draws
		FROM game_players gp
		JOIN games g ON gp.game_id = g.id
		WHERE g.voided = 0` + filter + `
		GROUP BY player_key
		ORDER BY wins DESC, total DESC, player_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "leaderboard")
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Key, &e.Name, &e.Total, &e.Wins, &e.Losses, &e.Draws); err != nil {
			return nil, eris.Wrap(err, "scan leaderboard")
		}
		if e.Total > 0 {
			e.WinRate = float64(e.Wins) / float64(e.Total) * 100
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "leaderboard")
	}
	rows.Close()

	for i := range entries {
		streak, err := s.calculateStreak(ctx, entries[i].Key, startDate, endDate)
		if err != nil {
			return nil, err
		}
		entries[i].Streak = streak
	}
	return entries, nil
}

// calculateStreak returns a player's current win or loss streak. A draw
// ends any streak.
func (s *SQLiteStore) calculateStreak(ctx context.Context, key string, startDate, endDate *time.Time) (int, error) {
	filter, args := dateFilter(startDate, endDate)
	query := `
		SELECT CASE
			WHEN g.winner = gp.team THEN 1
			WHEN g.winner = 'draw' THEN 0
			ELSE -1 END
		FROM game_players gp
		JOIN games g ON gp.game_id = g.id
		WHERE ` + playerKey + ` = ? AND g.voided = 0` + filter + `
		ORDER BY g.ended_at DESC, g.id DESC`

	rows, err := s.db.QueryContext(ctx, query, append([]any{key}, args...)...)
	if err != nil {
		return 0, eris.Wrapf(err, "streak of %s", key)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var result int
		if err := rows.Scan(&result); err != nil {
			return 0, eris.Wrap(err, "scan streak")
		}
		if result == 0 || (streak != 0 && (result > 0) != (streak > 0)) {
			break
		}
		streak += result
	}
	return streak, eris.Wrap(rows.Err(), "streak")
}

func dateFilter(startDate, endDate *time.Time) (string, []any) {
	filter := ""
	args := []any{}
	if startDate != nil {
		filter += " AND g.ended_at >= ?"
		args = append(args, startDate.UnixMilli())
	}
	if endDate != nil {
		filter += " AND g.ended_at <= ?"
		args = append(args, endDate.UnixMilli())
	}
	return filter, args
}
