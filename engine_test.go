package rowhook

import "database/sql/driver"

// fakeEngine is a hand-driven Engine for exercising the trampoline and
// the registry without a real store.
type fakeEngine struct {
	fn  TrampolineFunc
	ctx uintptr

	cols  int
	depth int
	old   []driver.Value
	new   []driver.Value

	oldErr error
	newErr error
}

func (e *fakeEngine) SetPreupdateTrampoline(fn TrampolineFunc, ctx uintptr) uintptr {
	prev := e.ctx
	e.fn = fn
	e.ctx = ctx
	return prev
}

func (e *fakeEngine) PreupdateColumnCount() int { return e.cols }

func (e *fakeEngine) PreupdateDepth() int { return e.depth }

func (e *fakeEngine) PreupdateOld(i int) (driver.Value, error) {
	if e.oldErr != nil {
		return nil, e.oldErr
	}
	return e.old[i], nil
}

func (e *fakeEngine) PreupdateNew(i int) (driver.Value, error) {
	if e.newErr != nil {
		return nil, e.newErr
	}
	return e.new[i], nil
}

// fire simulates the engine dispatching a pending row change to the
// installed trampoline.
func (e *fakeEngine) fire(code int, db, tbl []byte, oldRowID, newRowID int64) {
	e.fn(e.ctx, e, code, db, tbl, oldRowID, newRowID)
}
