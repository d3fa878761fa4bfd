// Package rowhook registers a single observation hook on a row-change
// engine's pre-write notification point. The hook sees every row insert,
// delete and update before it is applied, together with scoped accessors
// for the old and new column values of the affected row.
package rowhook

import "runtime/cgo"

// Hook observes one pending row change. The Case's concrete type matches
// action and its accessors are valid only for the duration of the call.
// The hook may mutate captured state; it runs inline on the engine's
// write path and must return promptly. It cannot veto or alter the
// pending change, and a panic inside it is contained and discarded.
type Hook func(action Action, dbName, tblName string, c Case)

// Conn couples a row-change engine with its single preupdate hook slot.
// At most one hook is installed at a time; registering a new one releases
// the previous one's resources exactly once.
//
// Conn is not safe for concurrent registration. The engine serializes
// writes per connection, so hook invocations never overlap; registration
// itself must be serialized by the caller under the same single-writer
// discipline.
type Conn struct {
	eng Engine

	// free releases the opaque context of the currently installed hook.
	// Non-nil iff a hook is installed; always paired with the context it
	// was captured for.
	free func(uintptr)
}

// Wrap attaches the hook machinery to an engine.
func Wrap(eng Engine) *Conn {
	return &Conn{eng: eng}
}

// SetPreupdateHook registers hook to be invoked before each row insert,
// delete or update. A nil hook removes any existing registration.
//
// The hook receives the action, the database and table names, and a Case
// carrying the accessors relevant to the action: only a new-value
// accessor for an insert, only an old-value accessor for a delete, both
// for an update.
func (c *Conn) SetPreupdateHook(hook Hook) {
	if hook == nil {
		c.RemovePreupdateHook()
		return
	}

	h := cgo.NewHandle(hook)
	free := func(ctx uintptr) { cgo.Handle(ctx).Delete() }

	prev := c.eng.SetPreupdateTrampoline(trampoline, uintptr(h))
	c.release(prev)
	c.free = free
}

// RemovePreupdateHook clears the notification point and releases any
// installed hook. Removing when nothing is registered is a no-op.
func (c *Conn) RemovePreupdateHook() {
	prev := c.eng.SetPreupdateTrampoline(nil, 0)
	c.release(prev)
	c.free = nil
}

// release frees a previously installed context with the release function
// captured at its registration, never the one being installed now.
func (c *Conn) release(prev uintptr) {
	if prev != 0 && c.free != nil {
		c.free(prev)
	}
}
