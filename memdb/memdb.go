// Package memdb is a minimal in-memory row-change engine with a pre-write
// notification point. It implements rowhook.Engine and exists so that
// hooks can be exercised against a real store: every insert, update and
// delete dispatches to the installed trampoline strictly before the row
// is mutated, and trigger cascades run at an increased query depth.
//
// A DB serializes its own writes by construction: all operations must be
// driven from a single goroutine, matching the single-connection
// discipline of the engines this package stands in for.
package memdb

import (
	"database/sql/driver"
	"fmt"

	"github.com/mickamy/rowhook"
)

// Trigger is a cascade body run after a row change is applied. Changes it
// performs on the DB report a query depth one greater than the change
// that fired it.
type Trigger func(db *DB, rowid int64) error

type table struct {
	name     string
	cols     []string
	rows     map[int64][]driver.Value
	nextID   int64
	onInsert []Trigger
	onUpdate []Trigger
	onDelete []Trigger
}

// pending describes the row change currently being dispatched to the
// trampoline.
type pending struct {
	tbl *table
	old []driver.Value // nil for inserts
	new []driver.Value // nil for deletes
}

// DB is an in-memory collection of rowid tables.
type DB struct {
	tables map[string]*table

	tramp rowhook.TrampolineFunc
	ctx   uintptr

	cur   *pending
	depth int
}

// New returns an empty DB.
func New() *DB {
	return &DB{tables: make(map[string]*table)}
}

// CreateTable defines a table with the given column names.
func (db *DB) CreateTable(name string, cols ...string) error {
	if _, ok := db.tables[name]; ok {
		return fmt.Errorf("memdb: table %q already exists", name)
	}
	if len(cols) == 0 {
		return fmt.Errorf("memdb: table %q needs at least one column", name)
	}
	db.tables[name] = &table{
		name: name,
		cols: append([]string(nil), cols...),
		rows: make(map[int64][]driver.Value),
	}
	return nil
}

// Columns returns the column names of a table, or nil if it does not exist.
func (db *DB) Columns(name string) []string {
	t, ok := db.tables[name]
	if !ok {
		return nil
	}
	return append([]string(nil), t.cols...)
}

// Insert adds a row and returns its assigned rowid.
func (db *DB) Insert(name string, vals ...driver.Value) (int64, error) {
	t, err := db.lookup(name, vals)
	if err != nil {
		return 0, err
	}
	t.nextID++
	rowid := t.nextID
	row := append([]driver.Value(nil), vals...)

	db.dispatch(&pending{tbl: t, new: row}, rowhook.CodeInsert, rowid, rowid)
	t.rows[rowid] = row
	return rowid, db.cascade(t.onInsert, rowid)
}

// Update replaces the row identified by rowid.
func (db *DB) Update(name string, rowid int64, vals ...driver.Value) error {
	t, err := db.lookup(name, vals)
	if err != nil {
		return err
	}
	old, ok := t.rows[rowid]
	if !ok {
		return fmt.Errorf("memdb: no row %d in table %q", rowid, name)
	}
	row := append([]driver.Value(nil), vals...)

	db.dispatch(&pending{tbl: t, old: old, new: row}, rowhook.CodeUpdate, rowid, rowid)
	t.rows[rowid] = row
	return db.cascade(t.onUpdate, rowid)
}

// Delete removes the row identified by rowid.
func (db *DB) Delete(name string, rowid int64) error {
	t, ok := db.tables[name]
	if !ok {
		return fmt.Errorf("memdb: unknown table %q", name)
	}
	old, ok := t.rows[rowid]
	if !ok {
		return fmt.Errorf("memdb: no row %d in table %q", rowid, name)
	}

	db.dispatch(&pending{tbl: t, old: old}, rowhook.CodeDelete, rowid, rowid)
	delete(t.rows, rowid)
	return db.cascade(t.onDelete, rowid)
}

// Get returns a copy of the row identified by rowid.
func (db *DB) Get(name string, rowid int64) ([]driver.Value, bool) {
	t, ok := db.tables[name]
	if !ok {
		return nil, false
	}
	row, ok := t.rows[rowid]
	if !ok {
		return nil, false
	}
	return append([]driver.Value(nil), row...), true
}

// Count returns the number of rows in a table.
func (db *DB) Count(name string) int {
	t, ok := db.tables[name]
	if !ok {
		return 0
	}
	return len(t.rows)
}

// OnInsert registers a trigger fired after each insert into the table.
func (db *DB) OnInsert(name string, fn Trigger) error { return db.addTrigger(name, fn, rowhook.CodeInsert) }

// OnUpdate registers a trigger fired after each update of a row in the table.
func (db *DB) OnUpdate(name string, fn Trigger) error { return db.addTrigger(name, fn, rowhook.CodeUpdate) }

// OnDelete registers a trigger fired after each delete from the table.
func (db *DB) OnDelete(name string, fn Trigger) error { return db.addTrigger(name, fn, rowhook.CodeDelete) }

func (db *DB) addTrigger(name string, fn Trigger, code int) error {
	t, ok := db.tables[name]
	if !ok {
		return fmt.Errorf("memdb: unknown table %q", name)
	}
	switch code {
	case rowhook.CodeInsert:
		t.onInsert = append(t.onInsert, fn)
	case rowhook.CodeUpdate:
		t.onUpdate = append(t.onUpdate, fn)
	case rowhook.CodeDelete:
		t.onDelete = append(t.onDelete, fn)
	}
	return nil
}

func (db *DB) lookup(name string, vals []driver.Value) (*table, error) {
	t, ok := db.tables[name]
	if !ok {
		return nil, fmt.Errorf("memdb: unknown table %q", name)
	}
	if len(vals) != len(t.cols) {
		return nil, fmt.Errorf("memdb: table %q has %d columns, got %d values", name, len(t.cols), len(vals))
	}
	return t, nil
}

// dispatch invokes the installed trampoline for a pending change. The
// store has not been mutated yet; Preupdate* queries answer from p until
// the trampoline returns.
func (db *DB) dispatch(p *pending, code int, oldRowID, newRowID int64) {
	if db.tramp == nil {
		return
	}
	db.cur = p
	defer func() { db.cur = nil }()
	db.tramp(db.ctx, db, code, []byte("main"), []byte(p.tbl.name), oldRowID, newRowID)
}

// cascade runs trigger bodies at an increased depth.
func (db *DB) cascade(triggers []Trigger, rowid int64) error {
	if len(triggers) == 0 {
		return nil
	}
	db.depth++
	defer func() { db.depth-- }()
	for _, fn := range triggers {
		if err := fn(db, rowid); err != nil {
			return err
		}
	}
	return nil
}

// SetPreupdateTrampoline implements rowhook.Engine.
func (db *DB) SetPreupdateTrampoline(fn rowhook.TrampolineFunc, ctx uintptr) uintptr {
	prev := db.ctx
	db.tramp = fn
	db.ctx = ctx
	return prev
}

// PreupdateColumnCount implements rowhook.Engine.
func (db *DB) PreupdateColumnCount() int {
	if db.cur == nil {
		return 0
	}
	return len(db.cur.tbl.cols)
}

// PreupdateDepth implements rowhook.Engine.
func (db *DB) PreupdateDepth() int { return db.depth }

// PreupdateOld implements rowhook.Engine.
func (db *DB) PreupdateOld(i int) (driver.Value, error) {
	if db.cur == nil || db.cur.old == nil {
		return nil, fmt.Errorf("memdb: no old row for the current change")
	}
	if i < 0 || i >= len(db.cur.old) {
		return nil, fmt.Errorf("memdb: column %d out of range", i)
	}
	return db.cur.old[i], nil
}

// PreupdateNew implements rowhook.Engine.
func (db *DB) PreupdateNew(i int) (driver.Value, error) {
	if db.cur == nil || db.cur.new == nil {
		return nil, fmt.Errorf("memdb: no new row for the current change")
	}
	if i < 0 || i >= len(db.cur.new) {
		return nil, fmt.Errorf("memdb: column %d out of range", i)
	}
	return db.cur.new[i], nil
}
