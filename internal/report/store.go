package report

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kellerdav/classroom-sim/internal/emotion"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id  TEXT PRIMARY KEY,
	scenario    TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	ended_at    TEXT
);

CREATE TABLE IF NOT EXISTS action_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	action_id     TEXT NOT NULL,
	kind          TEXT NOT NULL,
	target_id     TEXT,
	context_label TEXT,
	sim_time      REAL NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS reports (
	session_id          TEXT PRIMARY KEY,
	total_actions       INTEGER NOT NULL,
	positive_actions    INTEGER NOT NULL,
	negative_actions    INTEGER NOT NULL,
	average_engagement  REAL NOT NULL,
	total_disruptions   INTEGER NOT NULL,
	score               REAL NOT NULL,
	created_at          TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store

// Store persists sessions, the append-only action log, and final reports
// in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region sessions

// CreateSession inserts the session row at session start.
func (s *Store) CreateSession(sessionID, scenario string, startedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, scenario, started_at) VALUES (?, ?, ?)`,
		sessionID, scenario, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	SessionID string
	Scenario  string
	StartedAt time.Time
	EndedAt   time.Time
	Ended     bool
}

// ListSessions returns the most recent sessions.
func (s *Store) ListSessions(limit int) ([]SessionSummary, error) {
	rows, err := s.db.Query(
		`SELECT session_id, scenario, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var row SessionSummary
		var startedStr string
		var endedStr sql.NullString
		if err := rows.Scan(&row.SessionID, &row.Scenario, &startedStr, &endedStr); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		row.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		if endedStr.Valid {
			row.EndedAt, _ = time.Parse(time.RFC3339Nano, endedStr.String)
			row.Ended = true
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// #endregion sessions

// #region action-log

// AppendAction appends one action to the session's log. The log is
// append-only; nothing updates or deletes rows.
func (s *Store) AppendAction(sessionID string, a TeacherAction) error {
	_, err := s.db.Exec(
		`INSERT INTO action_log (session_id, action_id, kind, target_id, context_label, sim_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, a.ID, string(a.Kind),
		nullIfEmpty(a.TargetID), nullIfEmpty(a.ContextLabel),
		a.SimTime, a.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

// ActionLog returns the session's actions in append order.
func (s *Store) ActionLog(sessionID string) ([]TeacherAction, error) {
	rows, err := s.db.Query(
		`SELECT action_id, kind, target_id, context_label, sim_time, created_at
		 FROM action_log WHERE session_id = ? ORDER BY id ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("action log: %w", err)
	}
	defer rows.Close()

	var out []TeacherAction
	for rows.Next() {
		var a TeacherAction
		var kind string
		var target, label sql.NullString
		var createdStr string
		if err := rows.Scan(&a.ID, &kind, &target, &label, &a.SimTime, &createdStr); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Kind = emotion.ActionKind(kind)
		if target.Valid {
			a.TargetID = target.String
		}
		if label.Valid {
			a.ContextLabel = label.String
		}
		a.Timestamp, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, a)
	}
	return out, rows.Err()
}

// #endregion action-log

// #region reports

// FinishSession marks the session ended and stores its report atomically.
func (s *Store) FinishSession(rep SessionReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE sessions SET ended_at = ? WHERE session_id = ?`,
		rep.EndTime.UTC().Format(time.RFC3339Nano), rep.SessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO reports (session_id, total_actions, positive_actions, negative_actions,
		                      average_engagement, total_disruptions, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.SessionID, rep.TotalActions, rep.PositiveActions, rep.NegativeActions,
		rep.AverageEngagement, rep.TotalDisruptions, rep.Score,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	return tx.Commit()
}

// GetReport retrieves a stored session report.
func (s *Store) GetReport(sessionID string) (SessionReport, error) {
	var rep SessionReport
	var startedStr, endedStr string
	err := s.db.QueryRow(
		`SELECT r.session_id, s.started_at, s.ended_at,
		        r.total_actions, r.positive_actions, r.negative_actions,
		        r.average_engagement, r.total_disruptions, r.score
		 FROM reports r JOIN sessions s ON s.session_id = r.session_id
		 WHERE r.session_id = ?`, sessionID,
	).Scan(&rep.SessionID, &startedStr, &endedStr,
		&rep.TotalActions, &rep.PositiveActions, &rep.NegativeActions,
		&rep.AverageEngagement, &rep.TotalDisruptions, &rep.Score)
	if err != nil {
		return SessionReport{}, fmt.Errorf("get report %s: %w", sessionID, err)
	}
	rep.StartTime, _ = time.Parse(time.RFC3339Nano, startedStr)
	rep.EndTime, _ = time.Parse(time.RFC3339Nano, endedStr)
	return rep, nil
}

// #endregion reports

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
