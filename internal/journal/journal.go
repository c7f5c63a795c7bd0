// Package journal records desktop transitions and finished gestures in a
// SQLite database so the daemon's activity can be inspected afterwards.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/gesture"
	"github.com/nosyt/nosytos/internal/platform"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS actions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session    TEXT    NOT NULL,
	at         INTEGER NOT NULL,
	action     TEXT    NOT NULL,
	window_id  TEXT    NOT NULL DEFAULT '',
	x          INTEGER NOT NULL DEFAULT 0,
	y          INTEGER NOT NULL DEFAULT 0,
	width      INTEGER NOT NULL DEFAULT 0,
	height     INTEGER NOT NULL DEFAULT 0,
	visible    INTEGER NOT NULL DEFAULT 0,
	maximized  INTEGER NOT NULL DEFAULT 0,
	active     INTEGER NOT NULL DEFAULT 0,
	detail     TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_actions_window ON actions(window_id);
`

// Entry is one journal row.
type Entry struct {
	ID        int64         `json:"id"`
	Session   string        `json:"session"`
	At        time.Time     `json:"at"`
	Action    string        `json:"action"`
	WindowID  string        `json:"window_id,omitempty"`
	Geometry  platform.Rect `json:"geometry"`
	Visible   bool          `json:"visible"`
	Maximized bool          `json:"maximized"`
	Active    bool          `json:"active"`
	Detail    string        `json:"detail,omitempty"`
}

// Journal writes entries through a buffered queue drained by Run.
type Journal struct {
	conn    *sql.DB
	session string
	queue   chan Entry
	logger  *slog.Logger
	dropped atomic.Int64
	now     func() time.Time
}

// Open opens (or creates) the journal database at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal: create dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &Journal{
		conn:    conn,
		session: uuid.NewString(),
		queue:   make(chan Entry, 512),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Session identifies this daemon run in the journal.
func (j *Journal) Session() string {
	return j.session
}

func (j *Journal) Close() error {
	return j.conn.Close()
}

// Dropped reports entries lost to a full queue.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Run writes queued entries until ctx is cancelled, then flushes what is
// left in the queue.
func (j *Journal) Run(ctx context.Context) error {
	j.logger.Info("journal: started", slog.String("session", j.session))
	for {
		select {
		case e := <-j.queue:
			j.write(context.Background(), e)
		case <-ctx.Done():
			for {
				select {
				case e := <-j.queue:
					j.write(context.Background(), e)
				default:
					j.logger.Info("journal: stopped")
					return nil
				}
			}
		}
	}
}

func (j *Journal) write(ctx context.Context, e Entry) {
	if err := j.Record(ctx, e); err != nil {
		j.logger.Warn("journal: write failed", slog.String("action", e.Action), slog.String("error", err.Error()))
	}
}

func (j *Journal) enqueue(e Entry) {
	if e.At.IsZero() {
		e.At = j.now()
	}
	select {
	case j.queue <- e:
	default:
		j.dropped.Add(1)
	}
}

// WindowChanged makes the journal a desktop observer. Per-move geometry
// updates are skipped; the finished gesture is recorded instead.
func (j *Journal) WindowChanged(action desktop.Action, w desktop.WindowView) {
	if action == desktop.ActionGeometry {
		return
	}
	j.enqueue(Entry{
		Action:    string(action),
		WindowID:  w.ID,
		Geometry:  w.Geometry,
		Visible:   w.Visible,
		Maximized: w.Maximized,
		Active:    w.Active,
	})
}

// GestureEnded records a finished drag or resize.
func (j *Journal) GestureEnded(res gesture.Result) {
	action := res.Session.Kind.String() + "-end"
	if res.Cancelled {
		action = res.Session.Kind.String() + "-cancel"
	}
	j.enqueue(Entry{
		Action:   action,
		WindowID: res.Session.WindowID,
		Geometry: res.Final,
		Visible:  true,
		Detail:   fmt.Sprintf("from %s edges=%s", res.Session.Origin, res.Session.Edges),
	})
}

// Record inserts e synchronously.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = j.now()
	}
	if e.Session == "" {
		e.Session = j.session
	}
	_, err := j.conn.ExecContext(ctx, `
		INSERT INTO actions (session, at, action, window_id, x, y, width, height, visible, maximized, active, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Session, e.At.UnixMilli(), e.Action, e.WindowID,
		e.Geometry.X, e.Geometry.Y, e.Geometry.Width, e.Geometry.Height,
		e.Visible, e.Maximized, e.Active, e.Detail)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	rows, err := j.conn.QueryContext(ctx, `
		SELECT id, session, at, action, window_id, x, y, width, height, visible, maximized, active, detail
		FROM actions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Session, &at, &e.Action, &e.WindowID,
			&e.Geometry.X, &e.Geometry.Y, &e.Geometry.Width, &e.Geometry.Height,
			&e.Visible, &e.Maximized, &e.Active, &e.Detail); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.At = time.UnixMilli(at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: rows: %w", err)
	}
	return out, nil
}
