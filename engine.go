package rowhook

import "database/sql/driver"

// TrampolineFunc is the fixed-signature entry point an engine calls once
// per pending row change, strictly before the change is applied. The ctx
// argument is the opaque context installed alongside the trampoline; the
// database and table names arrive as raw bytes and are decoded by the
// trampoline itself.
type TrampolineFunc func(ctx uintptr, eng Engine, code int, dbName, tblName []byte, oldRowID, newRowID int64)

// Engine is the row-change engine the hook machinery binds to. It applies
// inserts, deletes and updates to stored rows and offers a pre-write
// notification point.
//
// The Preupdate* queries are only meaningful while the engine is invoking
// the installed trampoline for a pending change; outside that window their
// results are engine-defined.
type Engine interface {
	// SetPreupdateTrampoline installs fn with the given opaque context and
	// returns the previously installed context (zero if none). A nil fn
	// with a zero ctx clears the notification point.
	SetPreupdateTrampoline(fn TrampolineFunc, ctx uintptr) (prev uintptr)

	// PreupdateColumnCount reports the number of columns in the row
	// currently being processed.
	PreupdateColumnCount() int

	// PreupdateDepth reports the trigger nesting depth of the current
	// change: 0 for a directly executed statement, >0 when the change was
	// caused by a trigger cascade.
	PreupdateDepth() int

	// PreupdateOld returns the raw old value of column i for the row
	// currently being deleted or updated.
	PreupdateOld(i int) (driver.Value, error)

	// PreupdateNew returns the raw new value of column i for the row
	// currently being inserted or updated.
	PreupdateNew(i int) (driver.Value, error)
}
