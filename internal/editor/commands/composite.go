package commands

import (
	"fmt"
)

// compositeOp runs child commands as a single undo unit. The child list is
// fixed at construction.
type compositeOp struct {
	children []*Command
	state    *compositeState
}

// compositeState holds each child's captured state, positionally matched to
// the children. A child that never ran has no capture.
type compositeState struct {
	states   []any
	captured []bool
}

func newCompositeOp(children []*Command) *compositeOp {
	return &compositeOp{children: append([]*Command(nil), children...)}
}

// Children returns a copy of the child list.
func (o *compositeOp) Children() []*Command {
	return append([]*Command(nil), o.children...)
}

// Validate collects every child's errors without stopping at the first
// failing child. Children built with SkipValidation are not checked.
func (o *compositeOp) Validate(ctx *Context) ValidationResult {
	var errs []string
	for _, child := range o.children {
		if child.options.SkipValidation {
			continue
		}
		if res := child.op.Validate(ctx); !res.IsValid {
			errs = append(errs, res.Errors...)
		}
	}
	return invalid(errs)
}

func (o *compositeOp) StateToStore(*Context) (any, error) {
	o.state = &compositeState{
		states:   make([]any, len(o.children)),
		captured: make([]bool, len(o.children)),
	}
	return o.state, nil
}

// Apply runs the children in order and stops at the first failure. Children
// that already ran are not rolled back. Each child captures its undo state
// right before it applies, so it sees what earlier children wrote.
func (o *compositeOp) Apply(ctx *Context) error {
	for i, child := range o.children {
		if o.state != nil && !o.state.captured[i] {
			s, err := child.op.StateToStore(ctx)
			if err != nil {
				return fmt.Errorf("composite step %d (%s): %w", i, child.kind, err)
			}
			o.state.states[i], o.state.captured[i] = s, true
		}
		if err := child.op.Apply(ctx); err != nil {
			return fmt.Errorf("composite step %d (%s): %w", i, child.kind, err)
		}
	}
	return nil
}

// Revert undoes the children in reverse order.
func (o *compositeOp) Revert(ctx *Context, captured any) error {
	st, ok := captured.(*compositeState)
	if !ok {
		return fmt.Errorf("unexpected captured state %T for composite", captured)
	}
	if len(st.states) != len(o.children) {
		return fmt.Errorf("composite has %d children but %d captured states", len(o.children), len(st.states))
	}
	for i := len(o.children) - 1; i >= 0; i-- {
		if !st.captured[i] {
			continue
		}
		child := o.children[i]
		if err := child.op.Revert(ctx, st.states[i]); err != nil {
			return fmt.Errorf("composite undo step %d (%s): %w", i, child.kind, err)
		}
	}
	return nil
}

// ============================================================
// Builder
// ============================================================

// CompositeBuilder collects child commands before a composite is built.
// Once Build returns, the composite's children can no longer change.
type CompositeBuilder struct {
	factory  *Factory
	children []*Command
	err      error
}

// Add builds a child command through the factory. The first error is kept
// and reported by Build.
func (b *CompositeBuilder) Add(kind Kind, payload Payload, opts Options) *CompositeBuilder {
	if b.err != nil {
		return b
	}
	cmd, err := b.factory.CreateCommand(kind, payload, opts)
	if err != nil {
		b.err = err
		return b
	}
	b.children = append(b.children, cmd)
	return b
}

// AddCommand appends an already-built, not yet executed command.
func (b *CompositeBuilder) AddCommand(cmd *Command) *CompositeBuilder {
	if b.err == nil {
		b.children = append(b.children, cmd)
	}
	return b
}

func (b *CompositeBuilder) Len() int { return len(b.children) }

func (b *CompositeBuilder) Build(opts Options) (*Command, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.factory.CreateCommand(KindComposite, CompositePayload{Commands: b.children}, opts)
}
