// Package store persists site analytics in SQLite: privacy-conscious visitor
// records, terminal session summaries, command usage and hacktype scores.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Visit is one tracked page view. The client IP is stored hashed.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Session summarises one closed terminal session.
type Session struct {
	ID           string    `json:"id"`
	Transport    string    `json:"transport"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	Commands     int       `json:"commands"`
	Rounds       int       `json:"rounds"`
	HighScoreWPM int       `json:"high_score_wpm"`
}

// CommandCount is the number of times a command name was submitted.
type CommandCount struct {
	Command string `json:"command"`
	Count   int64  `json:"count"`
}

// Score is one completed hacktype round.
type Score struct {
	SessionID  string    `json:"session_id"`
	WPM        int       `json:"wpm"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	Prompt     string    `json:"prompt"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalVisitors    int64          `json:"total_visitors"`
	UniqueVisitors   int64          `json:"unique_visitors"`
	VisitorsToday    int64          `json:"visitors_today"`
	VisitorsThisWeek int64          `json:"visitors_this_week"`
	TerminalSessions int64          `json:"terminal_sessions"`
	TerminalCommands int64          `json:"terminal_commands"`
	TopCommands      []CommandCount `json:"top_commands"`
	Leaderboard      []Score        `json:"leaderboard"`
	RecentVisitors   []Visit        `json:"recent_visitors"`
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT,
		path TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp);

	CREATE TABLE IF NOT EXISTS terminal_sessions (
		id TEXT PRIMARY KEY,
		transport TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL,
		commands INTEGER NOT NULL DEFAULT 0,
		rounds INTEGER NOT NULL DEFAULT 0,
		high_score_wpm INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS terminal_commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		command TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_terminal_commands_command ON terminal_commands(command);

	CREATE TABLE IF NOT EXISTS hacktype_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		wpm INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		recorded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_hacktype_scores_wpm ON hacktype_scores(wpm DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordVisit stores a page view.
func (s *Store) RecordVisit(ctx context.Context, hashedIP, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)`,
		hashedIP, userAgent, path, s.now().UTC())
	return err
}

// CleanupVisitors removes visitor records older than the given age and
// returns how many were deleted.
func (s *Store) CleanupVisitors(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`,
		s.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// RecordCommand stores one submitted command name for a session.
func (s *Store) RecordCommand(ctx context.Context, sessionID, command string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO terminal_commands (session_id, command, created_at)
		VALUES (?, ?, ?)`,
		sessionID, command, s.now().UTC())
	return err
}

// RecordSession stores the summary of a closed terminal session.
func (s *Store) RecordSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO terminal_sessions
		(id, transport, started_at, ended_at, commands, rounds, high_score_wpm)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Transport, sess.StartedAt.UTC(), sess.EndedAt.UTC(),
		sess.Commands, sess.Rounds, sess.HighScoreWPM)
	return err
}

// RecordScore stores a completed hacktype round.
func (s *Store) RecordScore(ctx context.Context, score Score) error {
	if score.RecordedAt.IsZero() {
		score.RecordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hacktype_scores (session_id, wpm, elapsed_ms, prompt, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		score.SessionID, score.WPM, score.ElapsedMS, score.Prompt, score.RecordedAt.UTC())
	return err
}

// Stats returns the admin dashboard summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		query string
		args  []any
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM visitors", nil, &stats.TotalVisitors},
		{"SELECT COUNT(DISTINCT hashed_ip) FROM visitors", nil, &stats.UniqueVisitors},
		{"SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{today}, &stats.VisitorsToday},
		{"SELECT COUNT(*) FROM visitors WHERE timestamp >= ?", []any{now.Add(-7 * 24 * time.Hour)}, &stats.VisitorsThisWeek},
		{"SELECT COUNT(*) FROM terminal_sessions", nil, &stats.TerminalSessions},
		{"SELECT COUNT(*) FROM terminal_commands", nil, &stats.TerminalCommands},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if stats.TopCommands, err = s.TopCommands(ctx, 10); err != nil {
		return nil, err
	}
	if stats.Leaderboard, err = s.Leaderboard(ctx, 10); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = s.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentVisitors returns the newest visitor records first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visitors: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// TopCommands returns the most used command names.
func (s *Store) TopCommands(ctx context.Context, limit int) ([]CommandCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT command, COUNT(*) AS uses
		FROM terminal_commands
		GROUP BY command
		ORDER BY uses DESC, command ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top commands: %w", err)
	}
	defer rows.Close()

	var out []CommandCount
	for rows.Next() {
		var c CommandCount
		if err := rows.Scan(&c.Command, &c.Count); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Leaderboard returns the fastest hacktype rounds.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, wpm, elapsed_ms, prompt, recorded_at
		FROM hacktype_scores
		ORDER BY wpm DESC, recorded_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.SessionID, &sc.WPM, &sc.ElapsedMS, &sc.Prompt, &sc.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
