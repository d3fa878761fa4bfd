package rowhook

import (
	"fmt"
	"runtime/cgo"
	"unicode/utf8"
)

// trampoline is the entry point installed with the engine. It decodes the
// raw callback arguments, builds the Case matching the action and invokes
// the hook boxed behind ctx.
//
// Argument decoding failures are contract violations by the engine and
// panic before the hook is reached. A panic raised by the hook itself is
// recovered and discarded: the engine invokes us re-entrantly on its write
// path and must never observe an unwind.
func trampoline(ctx uintptr, eng Engine, code int, dbName, tblName []byte, oldRowID, newRowID int64) {
	action := actionFromCode(code)
	db := decodeName("database", dbName)
	tbl := decodeName("table", tblName)

	sc := &scope{}
	defer func() { sc.ended = true }()

	var c Case
	switch action {
	case ActionInsert:
		c = InsertCase{New: &NewValueAccessor{eng: eng, newRowID: newRowID, sc: sc}}
	case ActionDelete:
		c = DeleteCase{Old: &OldValueAccessor{eng: eng, oldRowID: oldRowID, sc: sc}}
	case ActionUpdate:
		c = UpdateCase{
			Old: &OldValueAccessor{eng: eng, oldRowID: oldRowID, sc: sc},
			New: &NewValueAccessor{eng: eng, newRowID: newRowID, sc: sc},
		}
	}

	hook := cgo.Handle(ctx).Value().(Hook)
	invoke(hook, action, db, tbl, c)
}

// invoke runs the hook with panic containment. Failures inside the hook
// are observed nowhere; this is an observation point, not an error
// channel.
func invoke(hook Hook, action Action, db, tbl string, c Case) {
	defer func() {
		_ = recover()
	}()
	hook(action, db, tbl, c)
}

// decodeName converts a raw engine-supplied identifier to a string. The
// engine guarantees valid UTF-8; a violation is surfaced loudly rather
// than passed to the hook.
func decodeName(kind string, raw []byte) string {
	if !utf8.Valid(raw) {
		panic(fmt.Sprintf("rowhook: invalid %s name %q", kind, raw))
	}
	return string(raw)
}
