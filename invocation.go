package minapi

import (
	"fmt"
	"net/http"
)

// InvocationContext carries one request's handler arguments through the
// filter chain. The argument list has a fixed arity equal to the handler's
// declared parameter count: filters may rewrite any slot in place, but the
// list can never grow or shrink.
type InvocationContext struct {
	w    http.ResponseWriter
	r    *http.Request
	args []any
}

func newInvocationContext(w http.ResponseWriter, r *http.Request, args []any) *InvocationContext {
	return &InvocationContext{w: w, r: r, args: args}
}

// Request returns the HTTP request being handled.
func (c *InvocationContext) Request() *http.Request { return c.r }

// ResponseWriter returns the response writer for the current request.
func (c *InvocationContext) ResponseWriter() http.ResponseWriter { return c.w }

// Arity returns the number of argument slots.
func (c *InvocationContext) Arity() int { return len(c.args) }

// Argument returns the argument at the given slot.
func (c *InvocationContext) Argument(index int) (any, error) {
	if index < 0 || index >= len(c.args) {
		return nil, fmt.Errorf("%w: index %d, arity %d", ErrArgumentIndex, index, len(c.args))
	}
	return c.args[index], nil
}

// SetArgument replaces the argument at the given slot. Downstream filters
// and the terminal handler observe the new value.
func (c *InvocationContext) SetArgument(index int, value any) error {
	if index < 0 || index >= len(c.args) {
		return fmt.Errorf("%w: index %d, arity %d", ErrArgumentIndex, index, len(c.args))
	}
	c.args[index] = value
	return nil
}

// Arguments returns a copy of the argument list. Mutating the returned
// slice does not affect the context; use SetArgument for that.
func (c *InvocationContext) Arguments() []any {
	out := make([]any, len(c.args))
	copy(out, c.args)
	return out
}

// InsertArgument always fails: the argument list has a fixed arity.
func (c *InvocationContext) InsertArgument(index int, value any) error {
	return fmt.Errorf("%w: insert at %d", ErrFixedArity, index)
}

// RemoveArgument always fails: the argument list has a fixed arity.
func (c *InvocationContext) RemoveArgument(index int) error {
	return fmt.Errorf("%w: remove at %d", ErrFixedArity, index)
}

// ClearArguments always fails: the argument list has a fixed arity.
func (c *InvocationContext) ClearArguments() error {
	return fmt.Errorf("%w: clear", ErrFixedArity)
}
