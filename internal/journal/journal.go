// Package journal persists escalation sessions and their transition events to
// SQLite for post-ride review and collaborator-side deduplication audits.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ridepulse-app/crashguard/internal/escalate"
)

// Journal is the SQLite-backed session audit log. It implements
// escalate.Recorder.
type Journal struct {
	*sql.DB
}

// Open opens (creating if necessary) the journal at path and ensures the
// schema exists. The inline schema matches migration 000001 so a fresh
// database works without running migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id         TEXT PRIMARY KEY,
			state              TEXT NOT NULL,
			kind               TEXT NOT NULL,
			probability        DOUBLE NOT NULL,
			peak_probability   DOUBLE NOT NULL,
			candidate_at       TIMESTAMP NOT NULL,
			countdown_deadline TIMESTAMP,
			resolved_at        TIMESTAMP,
			resolution         TEXT
		);
		CREATE TABLE IF NOT EXISTS session_events (
			event_id    INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id  TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			detail      TEXT,
			occurred_at TIMESTAMP NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &Journal{db}, nil
}

// RecordSession upserts the session row so it always reflects the latest
// transition.
func (j *Journal) RecordSession(v escalate.SessionView) error {
	var deadline, resolvedAt interface{}
	if !v.CountdownDeadline.IsZero() {
		deadline = v.CountdownDeadline.UTC()
	}
	if !v.ResolvedAt.IsZero() {
		resolvedAt = v.ResolvedAt.UTC()
	}

	_, err := j.Exec(`
		INSERT INTO sessions (
			session_id, state, kind, probability, peak_probability,
			candidate_at, countdown_deadline, resolved_at, resolution
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			peak_probability = excluded.peak_probability,
			countdown_deadline = excluded.countdown_deadline,
			resolved_at = excluded.resolved_at,
			resolution = excluded.resolution`,
		v.ID, string(v.State), string(v.Kind), v.Probability, v.PeakProbability,
		v.CandidateAt.UTC(), deadline, resolvedAt, string(v.Resolution),
	)
	return err
}

// RecordEvent appends a transition event for a session.
func (j *Journal) RecordEvent(sessionID string, eventType string, at time.Time, detail string) error {
	_, err := j.Exec(
		`INSERT INTO session_events (session_id, event_type, detail, occurred_at) VALUES (?, ?, ?, ?)`,
		sessionID, eventType, detail, at.UTC(),
	)
	return err
}

// SessionRecord is a journaled session row.
type SessionRecord struct {
	SessionID         string     `json:"session_id"`
	State             string     `json:"state"`
	Kind              string     `json:"kind"`
	Probability       float64    `json:"probability"`
	PeakProbability   float64    `json:"peak_probability"`
	CandidateAt       time.Time  `json:"candidate_at"`
	CountdownDeadline *time.Time `json:"countdown_deadline,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	Resolution        string     `json:"resolution,omitempty"`
}

// RecentSessions returns the most recent sessions, newest first.
func (j *Journal) RecentSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.Query(`
		SELECT session_id, state, kind, probability, peak_probability,
		       candidate_at, countdown_deadline, resolved_at, resolution
		FROM sessions
		ORDER BY candidate_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		var resolution sql.NullString
		if err := rows.Scan(
			&r.SessionID, &r.State, &r.Kind, &r.Probability, &r.PeakProbability,
			&r.CandidateAt, &r.CountdownDeadline, &r.ResolvedAt, &resolution,
		); err != nil {
			return nil, err
		}
		r.Resolution = resolution.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// EventRecord is a journaled transition event.
type EventRecord struct {
	EventID    int64     `json:"event_id"`
	SessionID  string    `json:"session_id"`
	EventType  string    `json:"event_type"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SessionEvents returns all events for a session in occurrence order.
func (j *Journal) SessionEvents(sessionID string) ([]EventRecord, error) {
	rows, err := j.Query(`
		SELECT event_id, session_id, event_type, detail, occurred_at
		FROM session_events
		WHERE session_id = ?
		ORDER BY event_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var r EventRecord
		var detail sql.NullString
		if err := rows.Scan(&r.EventID, &r.SessionID, &r.EventType, &detail, &r.OccurredAt); err != nil {
			return nil, err
		}
		r.Detail = detail.String
		records = append(records, r)
	}
	return records, rows.Err()
}
