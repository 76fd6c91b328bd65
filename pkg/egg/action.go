// Package egg holds the registry of special actions triggered by
// dialed digit sequences and dedicated remote buttons.
package egg

// Action is a special-action behavior. Failures from Run are reported
// to the caller for logging; they never roll back the activation that
// invoked them.
type Action interface {
	// Name identifies the action in logs.
	Name() string

	// Run executes the action's effects.
	Run() error
}

// ActionFunc adapts a named function to the Action interface.
type ActionFunc struct {
	name string
	fn   func() error
}

// NewActionFunc wraps fn as an Action with the given name.
func NewActionFunc(name string, fn func() error) ActionFunc {
	return ActionFunc{name: name, fn: fn}
}

// Name returns the action name.
func (a ActionFunc) Name() string {
	return a.name
}

// Run executes the wrapped function. A nil function is a no-op.
func (a ActionFunc) Run() error {
	if a.fn == nil {
		return nil
	}
	return a.fn()
}

// Compile-time interface check.
var _ Action = ActionFunc{}
