package rowhook

import "fmt"

// Action classifies the pending row change reported by the engine.
type Action int

const (
	// ActionUnknown is the zero value; the code mapping never produces it.
	ActionUnknown Action = iota
	ActionInsert
	ActionDelete
	ActionUpdate
)

// Native action codes used by the engine at the trampoline boundary.
const (
	CodeDelete = 9
	CodeInsert = 18
	CodeUpdate = 23
)

// actionFromCode maps the engine's native action code to an Action.
// The code set is fixed by the engine contract; anything else means the
// collaborator violated it, and there is no valid value to recover to.
func actionFromCode(code int) Action {
	switch code {
	case CodeInsert:
		return ActionInsert
	case CodeDelete:
		return ActionDelete
	case CodeUpdate:
		return ActionUpdate
	default:
		panic(fmt.Sprintf("rowhook: unrecognized action code %d", code))
	}
}

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "INSERT"
	case ActionDelete:
		return "DELETE"
	case ActionUpdate:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}
