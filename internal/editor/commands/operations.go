package commands

import (
	"fmt"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Add room / door
// ============================================================

type addRoomOp struct {
	checked
	id      string
	payload AddRoomPayload
}

func (o *addRoomOp) Result() any { return o.id }

func (o *addRoomOp) StateToStore(*Context) (any, error) { return o.id, nil }

func (o *addRoomOp) Apply(ctx *Context) error {
	points := o.payload.Points
	if points == nil && o.payload.Geometry.Type == models.GeometryPolygon {
		points = geometry.OpenRing(o.payload.Geometry.Data.Points)
	}
	room := models.Room{
		ID:       o.id,
		Metadata: o.payload.Metadata.Clone(),
		Geometry: o.payload.Geometry.Clone(),
		Points:   append([]models.Point(nil), points...),
	}
	return ctx.Dispatch(models.Action{Type: roomEntity.action(models.VerbAdd), Payload: room})
}

func (o *addRoomOp) Revert(ctx *Context, captured any) error {
	return revertAdd(ctx, roomEntity.name, captured)
}

type addDoorOp struct {
	checked
	id      string
	payload AddDoorPayload
}

func (o *addDoorOp) Result() any { return o.id }

func (o *addDoorOp) StateToStore(*Context) (any, error) { return o.id, nil }

func (o *addDoorOp) Apply(ctx *Context) error {
	door := models.Door{
		ID:       o.id,
		Metadata: o.payload.Metadata.Clone(),
		RoomID:   o.payload.RoomID,
		Geometry: o.payload.Geometry.Clone(),
	}
	return ctx.Dispatch(models.Action{Type: doorEntity.action(models.VerbAdd), Payload: door})
}

func (o *addDoorOp) Revert(ctx *Context, captured any) error {
	return revertAdd(ctx, doorEntity.name, captured)
}

// ============================================================
// Group
// ============================================================

// groupOp creates a group over existing objects. Undo deletes the group;
// its members stay where they are.
type groupOp struct {
	checked
	id      string
	payload GroupObjectsPayload
}

func (o *groupOp) Result() any { return o.id }

func (o *groupOp) StateToStore(*Context) (any, error) { return o.id, nil }

func (o *groupOp) Apply(ctx *Context) error {
	group := models.Group{
		ID:        o.id,
		Metadata:  o.payload.Metadata.Clone(),
		ObjectIDs: append([]string(nil), o.payload.ObjectIDs...),
	}
	return ctx.Dispatch(models.Action{Type: groupEntity.action(models.VerbAdd), Payload: group})
}

func (o *groupOp) Revert(ctx *Context, captured any) error {
	return revertAdd(ctx, groupEntity.name, captured)
}

func revertAdd(ctx *Context, entity string, captured any) error {
	id, ok := captured.(string)
	if !ok {
		return fmt.Errorf("unexpected captured state %T for %s add", captured, entity)
	}
	return ctx.Dispatch(models.Action{
		Type:    models.ActionType(entity, models.VerbDelete),
		Payload: models.EntityRef{ID: id},
	})
}

// ============================================================
// Transform
// ============================================================

// transformOp sets the transform of every target. Undo restores each
// target's own previous transform.
type transformOp struct {
	checked
	payload TransformObjectsPayload
}

func (o *transformOp) StateToStore(ctx *Context) (any, error) {
	st := ctx.State()
	prev := make([]models.TransformUpdate, 0, len(o.payload.ObjectIDs))
	for _, id := range o.payload.ObjectIDs {
		t, err := currentTransform(st, id)
		if err != nil {
			return nil, err
		}
		prev = append(prev, models.TransformUpdate{ID: id, Transform: t.Clone()})
	}
	return prev, nil
}

func (o *transformOp) Apply(ctx *Context) error {
	for _, id := range o.payload.ObjectIDs {
		if _, err := currentTransform(ctx.State(), id); err != nil {
			return err
		}
		next := o.payload.Transform
		err := ctx.Dispatch(models.Action{
			Type:    models.ActionSetTransform,
			Payload: models.TransformUpdate{ID: id, Transform: next.Clone()},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *transformOp) Revert(ctx *Context, captured any) error {
	prev, ok := captured.([]models.TransformUpdate)
	if !ok {
		return fmt.Errorf("unexpected captured state %T for transform", captured)
	}
	for _, u := range prev {
		if err := ctx.Dispatch(models.Action{Type: models.ActionSetTransform, Payload: u}); err != nil {
			return err
		}
	}
	return nil
}

func currentTransform(st models.State, id string) (*models.Transform, error) {
	if r, ok := st.Room(id); ok {
		return r.Transform, nil
	}
	if d, ok := st.Door(id); ok {
		return d.Transform, nil
	}
	return nil, notFound("object", id)
}
