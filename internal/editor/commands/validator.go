package commands

import (
	"fmt"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"
)

// DoorWallTolerance is the maximum distance, in world units, between a
// door's center and its room's boundary.
const DoorWallTolerance = 0.1

// Validator runs the geometric and referential checks for the mutation kinds
// that can break the plan. Kinds it does not know pass.
//
// Overlap checks compare axis-aligned bounding boxes only, which is
// conservative for concave rooms.
type Validator struct {
	wallTolerance float64
}

func NewValidator() *Validator {
	return &Validator{wallTolerance: DoorWallTolerance}
}

// Validate checks cmd against the state snapshot held by ctx.
func (v *Validator) Validate(cmd *Command, ctx *Context) ValidationResult {
	return v.check(cmd.Kind(), cmd.Payload(), ctx.State())
}

func (v *Validator) check(kind Kind, payload Payload, st models.State) ValidationResult {
	switch kind {
	case KindAddRoom:
		p, ok := payload.(AddRoomPayload)
		if !ok {
			return mismatched(kind, payload)
		}
		return invalid(v.addRoom(p, st))
	case KindAddDoor:
		p, ok := payload.(AddDoorPayload)
		if !ok {
			return mismatched(kind, payload)
		}
		return invalid(v.addDoor(p, st))
	case KindTransformObjects:
		p, ok := payload.(TransformObjectsPayload)
		if !ok {
			return mismatched(kind, payload)
		}
		return invalid(v.transform(p, st))
	case KindGroupObjects:
		p, ok := payload.(GroupObjectsPayload)
		if !ok {
			return mismatched(kind, payload)
		}
		return invalid(v.group(p, st))
	default:
		return valid()
	}
}

func mismatched(kind Kind, payload Payload) ValidationResult {
	return invalid([]string{fmt.Sprintf("payload %T does not match command %s", payload, kind)})
}

func (v *Validator) addRoom(p AddRoomPayload, st models.State) []string {
	points := geometry.OpenRing(p.Geometry.Data.Points)
	if p.Geometry.Type != models.GeometryPolygon || len(points) < 3 {
		return []string{"Room geometry must be a polygon with at least 3 points"}
	}

	var errs []string
	if geometry.SelfIntersects(points) {
		errs = append(errs, "Room polygon has self-intersecting edges")
	}
	box := geometry.Bounds(points)
	for _, room := range st.RoomList() {
		if box.Intersects(geometry.WorldBounds(room.Geometry, room.Transform)) {
			errs = append(errs, fmt.Sprintf("Room overlaps with existing room %s", room.ID))
		}
	}
	return errs
}

func (v *Validator) addDoor(p AddDoorPayload, st models.State) []string {
	if p.Geometry.Type != models.GeometryRect {
		return []string{"Door geometry must be a rectangle"}
	}

	var errs []string
	box := geometry.Bounds(geometry.Points(p.Geometry))
	if p.RoomID != "" {
		room, ok := st.Room(p.RoomID)
		if !ok {
			errs = append(errs, fmt.Sprintf("Room %s not found", p.RoomID))
		} else if geometry.DistanceToBoundary(box.Center(), geometry.RoomBoundary(room)) > v.wallTolerance {
			errs = append(errs, fmt.Sprintf("Door must be placed on a wall of room %s", p.RoomID))
		}
	}
	for _, door := range st.DoorList() {
		if box.Intersects(geometry.WorldBounds(door.Geometry, door.Transform)) {
			errs = append(errs, fmt.Sprintf("Door overlaps with existing door %s", door.ID))
		}
	}
	return errs
}

func (v *Validator) transform(p TransformObjectsPayload, st models.State) []string {
	var errs []string
	for _, id := range p.ObjectIDs {
		if _, ok := objectBounds(st, id); !ok {
			errs = append(errs, fmt.Sprintf("Object %s not found", id))
		}
	}
	if s := p.Transform.Scale; s != nil && (s.X <= 0 || s.Y <= 0) {
		errs = append(errs, "Scale factors must be positive")
	}
	return errs
}

func (v *Validator) group(p GroupObjectsPayload, st models.State) []string {
	ids := unique(p.ObjectIDs)
	if len(ids) < 2 {
		return []string{"At least 2 objects are required to form a group"}
	}

	var errs []string
	boxes := make(map[string]geometry.BoundingBox, len(ids))
	for _, id := range ids {
		box, ok := objectBounds(st, id)
		if !ok {
			errs = append(errs, fmt.Sprintf("Object %s not found", id))
			continue
		}
		boxes[id] = box
	}
	if len(errs) > 0 {
		return errs
	}
	if !connected(ids, boxes) {
		errs = append(errs, "Objects are not connected")
	}
	return errs
}

// connected reports whether every id is reachable from ids[0] through
// pairs of touching bounding boxes, looking only at the candidate set.
func connected(ids []string, boxes map[string]geometry.BoundingBox) bool {
	visited := map[string]bool{ids[0]: true}
	stack := []string{ids[0]}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range ids {
			if visited[next] || !boxes[cur].Touches(boxes[next]) {
				continue
			}
			visited[next] = true
			stack = append(stack, next)
		}
	}
	return len(visited) == len(ids)
}

func objectBounds(st models.State, id string) (geometry.BoundingBox, bool) {
	if r, ok := st.Room(id); ok {
		return geometry.WorldBounds(r.Geometry, r.Transform), true
	}
	if d, ok := st.Door(id); ok {
		return geometry.WorldBounds(d.Geometry, d.Transform), true
	}
	return geometry.BoundingBox{}, false
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
