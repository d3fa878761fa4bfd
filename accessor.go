package rowhook

import (
	"errors"
	"fmt"
)

// ErrScopeEnded is returned by accessor value reads after the hook
// invocation that created the accessor has returned.
var ErrScopeEnded = errors.New("rowhook: accessor used outside its hook invocation")

// scope marks the validity window of the accessors handed to one hook
// invocation. The trampoline ends it when the invocation returns.
type scope struct {
	ended bool
}

func (s *scope) valid() bool { return s != nil && !s.ended }

// OldValueAccessor reads the pre-change values of the row being deleted or
// updated. It is only usable inside the hook invocation it was created
// for; value reads after the invocation returns fail with ErrScopeEnded.
type OldValueAccessor struct {
	eng      Engine
	oldRowID int64
	sc       *scope
}

// ColumnCount reports the number of columns in the row being changed.
func (a *OldValueAccessor) ColumnCount() int { return a.eng.PreupdateColumnCount() }

// QueryDepth reports the trigger nesting depth of the change; 0 for a
// top-level statement.
func (a *OldValueAccessor) QueryDepth() int { return a.eng.PreupdateDepth() }

// OldRowID returns the rowid of the row before the change.
func (a *OldValueAccessor) OldRowID() int64 { return a.oldRowID }

// OldColumnValue returns the old value of column i.
func (a *OldValueAccessor) OldColumnValue(i int) (Value, error) {
	if !a.sc.valid() {
		return Value{}, ErrScopeEnded
	}
	if err := checkColumn(a.eng, i); err != nil {
		return Value{}, err
	}
	raw, err := a.eng.PreupdateOld(i)
	if err != nil {
		return Value{}, fmt.Errorf("rowhook: failed to read old column %d: %w", i, err)
	}
	return DecodeValue(raw)
}

// NewValueAccessor reads the post-change values of the row being inserted
// or updated. Same validity window as OldValueAccessor.
type NewValueAccessor struct {
	eng      Engine
	newRowID int64
	sc       *scope
}

// ColumnCount reports the number of columns in the row being changed.
func (a *NewValueAccessor) ColumnCount() int { return a.eng.PreupdateColumnCount() }

// QueryDepth reports the trigger nesting depth of the change; 0 for a
// top-level statement.
func (a *NewValueAccessor) QueryDepth() int { return a.eng.PreupdateDepth() }

// NewRowID returns the rowid the row will have after the change.
func (a *NewValueAccessor) NewRowID() int64 { return a.newRowID }

// NewColumnValue returns the new value of column i.
func (a *NewValueAccessor) NewColumnValue(i int) (Value, error) {
	if !a.sc.valid() {
		return Value{}, ErrScopeEnded
	}
	if err := checkColumn(a.eng, i); err != nil {
		return Value{}, err
	}
	raw, err := a.eng.PreupdateNew(i)
	if err != nil {
		return Value{}, fmt.Errorf("rowhook: failed to read new column %d: %w", i, err)
	}
	return DecodeValue(raw)
}

// checkColumn rejects out-of-range column indexes. The native contract
// leaves them undefined; we surface a descriptive error instead.
func checkColumn(eng Engine, i int) error {
	if n := eng.PreupdateColumnCount(); i < 0 || i >= n {
		return fmt.Errorf("rowhook: column index %d out of range [0, %d)", i, n)
	}
	return nil
}
