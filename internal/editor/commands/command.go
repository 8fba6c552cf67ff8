// Package commands implements reversible editor mutations: the Command type,
// its validator, the factory that builds commands for each mutation kind and
// the executor that owns the undo/redo history.
package commands

import (
	"context"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Context
// ============================================================

// Store is the state store commands read from and dispatch into.
type Store interface {
	GetState() models.State
	Dispatch(models.Action) error
}

// Context is built fresh for every execute, undo and redo call. It holds a
// snapshot of the store that is refreshed after each dispatch, so a
// command body always reads what it has already written.
type Context struct {
	ctx   context.Context
	store Store
	state models.State
}

func NewContext(ctx context.Context, store Store) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{ctx: ctx, store: store, state: store.GetState()}
}

func (c *Context) Context() context.Context { return c.ctx }

// State returns the current snapshot. Callers must not mutate it.
func (c *Context) State() models.State { return c.state }

func (c *Context) Dispatch(action models.Action) error {
	if err := c.store.Dispatch(action); err != nil {
		return err
	}
	c.state = c.store.GetState()
	return nil
}

// ============================================================
// Command
// ============================================================

type Options struct {
	SkipHistory    bool `json:"skipHistory,omitempty"`
	SkipValidation bool `json:"skipValidation,omitempty"`
}

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

func valid() ValidationResult { return ValidationResult{IsValid: true, Errors: []string{}} }

func invalid(errs []string) ValidationResult {
	if len(errs) == 0 {
		return valid()
	}
	return ValidationResult{IsValid: false, Errors: errs}
}

// Operation is the kind-specific part of a command.
type Operation interface {
	// Validate checks the mutation against the current state without changing it.
	Validate(ctx *Context) ValidationResult
	// StateToStore captures whatever Revert needs, before Apply runs.
	StateToStore(ctx *Context) (any, error)
	// Apply dispatches the mutation. It runs on execute and again on every redo.
	Apply(ctx *Context) error
	// Revert dispatches the inverse mutation from the captured state.
	Revert(ctx *Context, captured any) error
}

// Resulter is implemented by operations that report data on success, such as a generated id.
type Resulter interface {
	Result() any
}

// Command is one reversible mutation. It is executed at most once; after an
// undo it is re-applied with Redo.
type Command struct {
	kind    Kind
	payload Payload
	options Options
	op      Operation

	executed    bool
	captured    any
	hasCaptured bool
}

// New wraps op as a command. Most callers should go through Factory.
func New(kind Kind, payload Payload, op Operation, opts Options) *Command {
	return &Command{kind: kind, payload: payload, options: opts, op: op}
}

func (c *Command) Kind() Kind           { return c.kind }
func (c *Command) Payload() Payload     { return c.payload }
func (c *Command) Options() Options     { return c.options }
func (c *Command) Operation() Operation { return c.op }

// Result is the operation's success data, or nil.
func (c *Command) Result() any {
	if r, ok := c.op.(Resulter); ok {
		return r.Result()
	}
	return nil
}

func (c *Command) Validate(ctx *Context) ValidationResult {
	return c.op.Validate(ctx)
}

// Execute validates (unless skipped), captures undo state (unless history is
// skipped) and applies the mutation. Validation failures leave the store untouched.
func (c *Command) Execute(ctx *Context) error {
	if c.executed {
		return newError(CodeExecution, "command %s was already executed, use redo to re-apply it", c.kind)
	}
	c.executed = true

	if !c.options.SkipValidation {
		if res := c.op.Validate(ctx); !res.IsValid {
			return validationError(res.Errors)
		}
	}
	if !c.options.SkipHistory {
		captured, err := c.op.StateToStore(ctx)
		if err != nil {
			return wrap(CodeExecution, err)
		}
		c.captured, c.hasCaptured = captured, true
	}
	return wrap(CodeExecution, c.op.Apply(ctx))
}

func (c *Command) Undo(ctx *Context) error {
	if c.options.SkipHistory {
		return newError(CodeUndo, "command %s was executed without history and cannot be undone", c.kind)
	}
	if !c.hasCaptured {
		return newError(CodeUndo, "command %s has no captured state", c.kind)
	}
	return wrap(CodeUndo, c.op.Revert(ctx, c.captured))
}

// Redo re-applies the mutation without validating or capturing again; the
// original capture still describes the state undo restored.
func (c *Command) Redo(ctx *Context) error {
	if c.options.SkipHistory {
		return newError(CodeRedo, "command %s was executed without history and cannot be redone", c.kind)
	}
	if !c.hasCaptured {
		return newError(CodeRedo, "command %s has not been executed", c.kind)
	}
	return wrap(CodeRedo, c.op.Apply(ctx))
}
