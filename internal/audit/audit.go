// Package audit records auth activity seen at the gateway: sign-ins, their
// failures, sign-outs, and guard redirects. The backend keeps its own
// authoritative records; this trail answers "what did the gateway do" when
// debugging redirect behavior.
package audit

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	KindLoginSuccess    = "login_success"
	KindLoginFailure    = "login_failure"
	KindLogout          = "logout"
	KindGuardRedirect   = "guard_redirect"
	KindPlaceholderPath = "placeholder_path"
)

type Event struct {
	EventID   string `json:"event_id"`
	Kind      string `json:"kind"`
	Email     string `json:"email,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Path      string `json:"path,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Recorder writes auth events. A nil Recorder is valid and drops everything,
// so callers never branch on whether auditing is configured.
type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder {
	if db == nil {
		return nil
	}
	return &Recorder{db: db}
}

// Record persists one event. Failures are logged, not returned: an audit
// write must never fail a user-facing request.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil {
		return
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.CreatedAt == "" {
		ev.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_events(event_id,kind,email,user_id,path,trace_id,detail,created_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		ev.EventID, ev.Kind, ev.Email, ev.UserID, ev.Path, ev.TraceID, ev.Detail, ev.CreatedAt)
	if err != nil {
		log.Printf("audit record %s: %v", ev.Kind, err)
	}
}

// Recent returns the newest events, newest first, capped at limit.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	if r == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, kind, email, user_id, path, trace_id, detail, created_at
		FROM auth_events
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.EventID, &ev.Kind, &ev.Email, &ev.UserID,
			&ev.Path, &ev.TraceID, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
