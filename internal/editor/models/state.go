package models

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================
// Application state tree
// ============================================================

// State is the editor state tree. Each slice keeps its entities by id and
// their insertion order, so the lookup path for an entity is
// state.<entity>s.<entity>s[id].
type State struct {
	Rooms  RoomsState  `json:"rooms"`
	Doors  DoorsState  `json:"doors"`
	Groups GroupsState `json:"groups"`
}

type RoomsState struct {
	Rooms map[string]Room `json:"rooms"`
	Order []string        `json:"order"`
}

type DoorsState struct {
	Doors map[string]Door `json:"doors"`
	Order []string        `json:"order"`
}

type GroupsState struct {
	Groups map[string]Group `json:"groups"`
	Order  []string         `json:"order"`
}

func NewState() State {
	return State{
		Rooms:  RoomsState{Rooms: map[string]Room{}, Order: []string{}},
		Doors:  DoorsState{Doors: map[string]Door{}, Order: []string{}},
		Groups: GroupsState{Groups: map[string]Group{}, Order: []string{}},
	}
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	out := NewState()
	for id, r := range s.Rooms.Rooms {
		out.Rooms.Rooms[id] = r.Clone()
	}
	out.Rooms.Order = append(out.Rooms.Order, s.Rooms.Order...)
	for id, d := range s.Doors.Doors {
		out.Doors.Doors[id] = d.Clone()
	}
	out.Doors.Order = append(out.Doors.Order, s.Doors.Order...)
	for id, g := range s.Groups.Groups {
		out.Groups.Groups[id] = g.Clone()
	}
	out.Groups.Order = append(out.Groups.Order, s.Groups.Order...)
	return out
}

func (s State) Room(id string) (Room, bool) {
	r, ok := s.Rooms.Rooms[id]
	return r, ok
}

func (s State) Door(id string) (Door, bool) {
	d, ok := s.Doors.Doors[id]
	return d, ok
}

func (s State) Group(id string) (Group, bool) {
	g, ok := s.Groups.Groups[id]
	return g, ok
}

// RoomList returns rooms in insertion order.
func (s State) RoomList() []Room {
	out := make([]Room, 0, len(s.Rooms.Order))
	for _, id := range s.Rooms.Order {
		if r, ok := s.Rooms.Rooms[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s State) DoorList() []Door {
	out := make([]Door, 0, len(s.Doors.Order))
	for _, id := range s.Doors.Order {
		if d, ok := s.Doors.Doors[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (s State) GroupList() []Group {
	out := make([]Group, 0, len(s.Groups.Order))
	for _, id := range s.Groups.Order {
		if g, ok := s.Groups.Groups[id]; ok {
			out = append(out, g)
		}
	}
	return out
}

// GroupOf returns the id of the group containing objectID, if any.
func (s State) GroupOf(objectID string) (string, bool) {
	for _, g := range s.GroupList() {
		for _, id := range g.ObjectIDs {
			if id == objectID {
				return g.ID, true
			}
		}
	}
	return "", false
}

// Document converts the state into its persisted layout.
func (s State) Document(now time.Time) PlanDocument {
	return PlanDocument{
		Rooms:     s.RoomList(),
		Doors:     s.DoorList(),
		Groups:    s.GroupList(),
		Version:   PlanVersion,
		Timestamp: now,
	}
}

// StateFromDocument builds a state tree from a persisted plan.
func StateFromDocument(doc PlanDocument) State {
	st := NewState()
	for _, r := range doc.Rooms {
		if _, ok := st.Rooms.Rooms[r.ID]; !ok {
			st.Rooms.Order = append(st.Rooms.Order, r.ID)
		}
		st.Rooms.Rooms[r.ID] = r.Clone()
	}
	for _, d := range doc.Doors {
		if _, ok := st.Doors.Doors[d.ID]; !ok {
			st.Doors.Order = append(st.Doors.Order, d.ID)
		}
		st.Doors.Doors[d.ID] = d.Clone()
	}
	for _, g := range doc.Groups {
		if _, ok := st.Groups.Groups[g.ID]; !ok {
			st.Groups.Order = append(st.Groups.Order, g.ID)
		}
		st.Groups.Groups[g.ID] = g.Clone()
	}
	return st
}

// ============================================================
// Actions
// ============================================================

// Action is a plain store action.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	EntityRoom  = "room"
	EntityDoor  = "door"
	EntityGroup = "group"
)

const (
	VerbAdd     = "add"
	VerbUpdate  = "update"
	VerbRestore = "restore"
	VerbDelete  = "delete"
)

const (
	ActionSetTransform = "objects/setTransform"
	ActionLoadPlan     = "plan/load"
	ActionResetPlan    = "plan/reset"
)

// ActionType builds "<entity>/<verb><Entity>", e.g. "room/updateRoom".
func ActionType(entity, verb string) string {
	return entity + "/" + verb + cases.Title(language.Und).String(entity)
}

// EntityUpdate is the payload of "<entity>/update<Entity>".
type EntityUpdate[C any] struct {
	ID      string `json:"id"`
	Changes C      `json:"changes"`
}

// EntityRef is the payload of "<entity>/delete<Entity>".
type EntityRef struct {
	ID string `json:"id"`
}

// Restored is the payload of "<entity>/restore<Entity>" when a delete is
// undone: the entity returns at Index in the entity order.
type Restored[T any] struct {
	Entity T   `json:"entity"`
	Index  int `json:"index"`
}

// TransformUpdate is the payload of objects/setTransform.
type TransformUpdate struct {
	ID        string     `json:"id"`
	Transform *Transform `json:"transform"`
}
