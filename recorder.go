package rowhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mickamy/rowhook/internal/buffer"
	"github.com/mickamy/rowhook/internal/ident"
)

// RedactFunc defines a function used to sanitize or mask values before recording.
type RedactFunc func(column string, v any) any

// RedactMap maps column names to specific redaction functions.
type RedactMap map[string]RedactFunc

// Config defines the main configuration options for a Recorder.
type Config struct {
	Suffix  string              // e.g. "_changes" (default)
	Redact  RedactMap           // optional column-based redaction; needs Columns for the table
	Columns map[string][]string // optional column names per base table name
}

// Recorder turns captured row changes into rows of per-table change
// tables. Its hook buffers a record per change; Flush writes the buffered
// records into `<table><suffix>` tables of the given database.
//
// The engine reports column values by index. When Config.Columns names the
// columns of a table, its before/after images are recorded as JSON objects
// and redaction applies; otherwise they are recorded as JSON arrays.
type Recorder struct {
	cfg     Config
	tracked map[string]bool // nil tracks every table
	buf     *buffer.Buffer[record]
}

// NewRecorder creates a Recorder with sensible defaults.
func NewRecorder(cfg Config) *Recorder {
	if cfg.Suffix == "" {
		cfg.Suffix = "_changes"
	}
	if cfg.Redact == nil {
		cfg.Redact = RedactMap{}
	}
	return &Recorder{cfg: cfg, buf: buffer.New[record]()}
}

// Track restricts recording to the given tables. Targets are table names
// or model values resolved the same way Migrate resolves them. Without a
// Track call every table is recorded.
func (r *Recorder) Track(targets ...any) error {
	if r.tracked == nil {
		r.tracked = make(map[string]bool, len(targets))
	}
	for _, t := range targets {
		name, err := resolveTableName(t)
		if err != nil {
			return err
		}
		r.tracked[ident.BaseTableName(name)] = true
	}
	return nil
}

// Hook returns the hook to register with a Conn. It reads the full
// before/after images of each change through the case's accessors and
// buffers them; it never writes to the change tables itself, since it runs
// inline on the engine's write path.
func (r *Recorder) Hook() Hook {
	return func(action Action, dbName, tblName string, c Case) {
		if r.tracked != nil && !r.tracked[ident.BaseTableName(tblName)] {
			return
		}
		rec := record{db: dbName, table: tblName, action: action, at: time.Now().UTC()}
		switch v := c.(type) {
		case InsertCase:
			rec.newRowID = v.New.NewRowID()
			rec.depth = v.New.QueryDepth()
			rec.after = readNewColumns(v.New)
		case DeleteCase:
			rec.oldRowID = v.Old.OldRowID()
			rec.depth = v.Old.QueryDepth()
			rec.before = readOldColumns(v.Old)
		case UpdateCase:
			rec.oldRowID = v.Old.OldRowID()
			rec.newRowID = v.New.NewRowID()
			rec.depth = v.Old.QueryDepth()
			rec.before = readOldColumns(v.Old)
			rec.after = readNewColumns(v.New)
		}
		r.buf.Add(rec)
	}
}

// Len reports how many records are buffered.
func (r *Recorder) Len() int { return r.buf.Len() }

// Reset discards all buffered records.
func (r *Recorder) Reset() { r.buf.Reset() }

// Flush writes buffered records into their change tables. Audit metadata
// attached to ctx via WithOperator, WithTraceID and WithReason is stored
// alongside each record.
func (r *Recorder) Flush(ctx context.Context, db *sql.DB) error {
	recs := r.buf.Drain()
	if len(recs) == 0 {
		return nil
	}
	me := extractMeta(ctx)

	for _, rec := range recs {
		cols := r.cfg.Columns[ident.BaseTableName(rec.table)]
		beforeJSON, err := r.encodeImage(rec.before, cols)
		if err != nil {
			return fmt.Errorf("rowhook: failed to encode before image: %w", err)
		}
		afterJSON, err := r.encodeImage(rec.after, cols)
		if err != nil {
			return fmt.Errorf("rowhook: failed to encode after image: %w", err)
		}

		changesParts := ident.SuffixParts(rec.table, r.cfg.Suffix)
		changesIdent := ident.QuoteQualified(changesParts)
		if changesIdent == "" {
			return fmt.Errorf("rowhook: invalid change table identifier for %q", rec.table)
		}

		var oldID, newID any
		switch rec.action {
		case ActionInsert:
			newID = rec.newRowID
		case ActionDelete:
			oldID = rec.oldRowID
		case ActionUpdate:
			oldID = rec.oldRowID
			newID = rec.newRowID
		}

		stmt := fmt.Sprintf(`
INSERT INTO %s (action, db_name, tbl_name, old_row_id, new_row_id, depth, operated_by, trace_id, reason, before, after, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, changesIdent)

		if _, err := db.ExecContext(
			ctx,
			stmt,
			rec.action.String(),
			rec.db,
			rec.table,
			oldID,
			newID,
			rec.depth,
			me.operator,
			me.traceID,
			me.reason,
			beforeJSON,
			afterJSON,
			rec.at.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("rowhook: failed to insert into change table: %w", err)
		}
	}
	return nil
}

// encodeImage renders a column image as JSON: an object when column names
// are known (with redaction applied), an array otherwise. A nil image
// encodes as SQL NULL.
func (r *Recorder) encodeImage(vals []any, cols []string) (any, error) {
	if vals == nil {
		return nil, nil
	}
	if len(cols) == len(vals) {
		m := make(map[string]any, len(vals))
		for i, c := range cols {
			v := vals[i]
			if fn, ok := r.cfg.Redact[c]; ok && fn != nil {
				v = fn(c, v)
			}
			m[c] = v
		}
		b, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// readOldColumns snapshots the pre-change image while the accessor is live.
func readOldColumns(a *OldValueAccessor) []any {
	out := make([]any, a.ColumnCount())
	for i := range out {
		v, err := a.OldColumnValue(i)
		if err != nil {
			continue
		}
		out[i] = v.Any()
	}
	return out
}

// readNewColumns snapshots the post-change image while the accessor is live.
func readNewColumns(a *NewValueAccessor) []any {
	out := make([]any, a.ColumnCount())
	for i := range out {
		v, err := a.NewColumnValue(i)
		if err != nil {
			continue
		}
		out[i] = v.Any()
	}
	return out
}
