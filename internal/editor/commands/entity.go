package commands

import (
	"fmt"
	"slices"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Entity kinds
// ============================================================

// entitySpec describes one entity kind as data: its name drives the action
// types ("room/updateRoom") and lookup reads state.<name>s.<name>s[id].
type entitySpec[T any] struct {
	name   string
	lookup func(models.State, string) (T, bool)
	order  func(models.State) []string
}

var (
	roomEntity = entitySpec[models.Room]{
		name:   models.EntityRoom,
		lookup: models.State.Room,
		order:  func(st models.State) []string { return st.Rooms.Order },
	}
	doorEntity = entitySpec[models.Door]{
		name:   models.EntityDoor,
		lookup: models.State.Door,
		order:  func(st models.State) []string { return st.Doors.Order },
	}
	groupEntity = entitySpec[models.Group]{
		name:   models.EntityGroup,
		lookup: models.State.Group,
		order:  func(st models.State) []string { return st.Groups.Order },
	}
)

func (e entitySpec[T]) action(verb string) string {
	return models.ActionType(e.name, verb)
}

func (e entitySpec[T]) find(st models.State, id string) (T, error) {
	v, ok := e.lookup(st, id)
	if !ok {
		var zero T
		return zero, notFound(e.name, id)
	}
	return v, nil
}

// checked routes Validate through the shared validator.
type checked struct {
	validator *Validator
	kind      Kind
	payload   Payload
}

func (c checked) Validate(ctx *Context) ValidationResult {
	return c.validator.check(c.kind, c.payload, ctx.State())
}

// ============================================================
// Update
// ============================================================

// updateOp merges a partial change into one entity; undo restores the full
// previous snapshot.
type updateOp[T any, C any] struct {
	checked
	entity  entitySpec[T]
	id      string
	changes C
}

func (o *updateOp[T, C]) StateToStore(ctx *Context) (any, error) {
	return o.entity.find(ctx.State(), o.id)
}

func (o *updateOp[T, C]) Apply(ctx *Context) error {
	if _, err := o.entity.find(ctx.State(), o.id); err != nil {
		return err
	}
	return ctx.Dispatch(models.Action{
		Type:    o.entity.action(models.VerbUpdate),
		Payload: models.EntityUpdate[C]{ID: o.id, Changes: o.changes},
	})
}

func (o *updateOp[T, C]) Revert(ctx *Context, captured any) error {
	prev, ok := captured.(T)
	if !ok {
		return fmt.Errorf("unexpected captured state %T for %s update", captured, o.entity.name)
	}
	return ctx.Dispatch(models.Action{Type: o.entity.action(models.VerbRestore), Payload: prev})
}

// ============================================================
// Delete
// ============================================================

// deleteOp removes one entity; undo puts the captured entity back where it was.
type deleteOp[T any] struct {
	checked
	entity entitySpec[T]
	id     string
}

func (o *deleteOp[T]) StateToStore(ctx *Context) (any, error) {
	st := ctx.State()
	v, err := o.entity.find(st, o.id)
	if err != nil {
		return nil, err
	}
	return models.Restored[T]{Entity: v, Index: slices.Index(o.entity.order(st), o.id)}, nil
}

func (o *deleteOp[T]) Apply(ctx *Context) error {
	if _, err := o.entity.find(ctx.State(), o.id); err != nil {
		return err
	}
	return ctx.Dispatch(models.Action{
		Type:    o.entity.action(models.VerbDelete),
		Payload: models.EntityRef{ID: o.id},
	})
}

func (o *deleteOp[T]) Revert(ctx *Context, captured any) error {
	prev, ok := captured.(models.Restored[T])
	if !ok {
		return fmt.Errorf("unexpected captured state %T for %s delete", captured, o.entity.name)
	}
	return ctx.Dispatch(models.Action{Type: o.entity.action(models.VerbRestore), Payload: prev})
}

func newUpdateCommand[T any, C any](v *Validator, e entitySpec[T], p Payload, id string, changes C, opts Options) *Command {
	op := &updateOp[T, C]{checked: checked{v, p.Kind(), p}, entity: e, id: id, changes: changes}
	return New(p.Kind(), p, op, opts)
}

func newDeleteCommand[T any](v *Validator, e entitySpec[T], p Payload, id string, opts Options) *Command {
	op := &deleteOp[T]{checked: checked{v, p.Kind(), p}, entity: e, id: id}
	return New(p.Kind(), p, op, opts)
}
