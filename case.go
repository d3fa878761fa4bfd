package rowhook

// Case is the tagged union of per-action change views handed to a hook.
// The concrete type always matches the Action reported alongside it:
// InsertCase for ActionInsert, DeleteCase for ActionDelete, UpdateCase for
// ActionUpdate.
type Case interface {
	Action() Action
}

// InsertCase exposes the row about to be inserted.
type InsertCase struct {
	New *NewValueAccessor
}

func (InsertCase) Action() Action { return ActionInsert }

// DeleteCase exposes the row about to be deleted.
type DeleteCase struct {
	Old *OldValueAccessor
}

func (DeleteCase) Action() Action { return ActionDelete }

// UpdateCase exposes both images of the row about to be updated.
type UpdateCase struct {
	Old *OldValueAccessor
	New *NewValueAccessor
}

func (UpdateCase) Action() Action { return ActionUpdate }
