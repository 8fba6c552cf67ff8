// Package store holds the editor state tree behind a dispatch/subscribe API.
// Mutations only happen through Dispatch; readers get deep-copied snapshots.
package store

import (
	"fmt"
	"slices"
	"sync"

	"floorplan-editor/internal/editor/models"
)

// Listener is notified after every successful dispatch.
type Listener func(action models.Action, state models.State)

type Store struct {
	mu        sync.RWMutex
	state     models.State
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return NewWithState(models.NewState())
}

func NewWithState(initial models.State) *Store {
	return &Store{
		state:     initial.Clone(),
		listeners: make(map[int]Listener),
	}
}

// GetState returns a snapshot that is safe to read and keep.
func (s *Store) GetState() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch applies action to the state tree and notifies listeners.
func (s *Store) Dispatch(action models.Action) error {
	s.mu.Lock()
	next, err := reduce(s.state, action)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	snapshot := next.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(action, snapshot)
	}
	return nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// ============================================================
// Reducers
// ============================================================

var (
	addRoom      = models.ActionType(models.EntityRoom, models.VerbAdd)
	updateRoom   = models.ActionType(models.EntityRoom, models.VerbUpdate)
	restoreRoom  = models.ActionType(models.EntityRoom, models.VerbRestore)
	deleteRoom   = models.ActionType(models.EntityRoom, models.VerbDelete)
	addDoor      = models.ActionType(models.EntityDoor, models.VerbAdd)
	updateDoor   = models.ActionType(models.EntityDoor, models.VerbUpdate)
	restoreDoor  = models.ActionType(models.EntityDoor, models.VerbRestore)
	deleteDoor   = models.ActionType(models.EntityDoor, models.VerbDelete)
	addGroup     = models.ActionType(models.EntityGroup, models.VerbAdd)
	updateGroup  = models.ActionType(models.EntityGroup, models.VerbUpdate)
	restoreGroup = models.ActionType(models.EntityGroup, models.VerbRestore)
	deleteGroup  = models.ActionType(models.EntityGroup, models.VerbDelete)
)

// reduce mutates st in place; st is the store's private copy.
func reduce(st models.State, action models.Action) (models.State, error) {
	switch action.Type {
	case addRoom:
		r, err := payloadAs[models.Room](action)
		if err != nil {
			return st, err
		}
		if _, exists := st.Rooms.Rooms[r.ID]; exists {
			return st, fmt.Errorf("room %s already exists", r.ID)
		}
		st.Rooms.Order = upsert(st.Rooms.Rooms, st.Rooms.Order, r.ID, r.Clone())
	case restoreRoom:
		r, at, err := restored[models.Room](action)
		if err != nil {
			return st, err
		}
		st.Rooms.Order = place(st.Rooms.Rooms, st.Rooms.Order, r.ID, r.Clone(), at)
	case updateRoom:
		u, err := payloadAs[models.EntityUpdate[models.RoomChanges]](action)
		if err != nil {
			return st, err
		}
		r, ok := st.Rooms.Rooms[u.ID]
		if !ok {
			return st, fmt.Errorf("room %s not found", u.ID)
		}
		st.Rooms.Rooms[u.ID] = r.Apply(u.Changes)
	case deleteRoom:
		ref, err := payloadAs[models.EntityRef](action)
		if err != nil {
			return st, err
		}
		if st.Rooms.Order, err = remove(st.Rooms.Rooms, st.Rooms.Order, ref.ID, models.EntityRoom); err != nil {
			return st, err
		}

	case addDoor:
		d, err := payloadAs[models.Door](action)
		if err != nil {
			return st, err
		}
		if _, exists := st.Doors.Doors[d.ID]; exists {
			return st, fmt.Errorf("door %s already exists", d.ID)
		}
		st.Doors.Order = upsert(st.Doors.Doors, st.Doors.Order, d.ID, d.Clone())
	case restoreDoor:
		d, at, err := restored[models.Door](action)
		if err != nil {
			return st, err
		}
		st.Doors.Order = place(st.Doors.Doors, st.Doors.Order, d.ID, d.Clone(), at)
	case updateDoor:
		u, err := payloadAs[models.EntityUpdate[models.DoorChanges]](action)
		if err != nil {
			return st, err
		}
		d, ok := st.Doors.Doors[u.ID]
		if !ok {
			return st, fmt.Errorf("door %s not found", u.ID)
		}
		st.Doors.Doors[u.ID] = d.Apply(u.Changes)
	case deleteDoor:
		ref, err := payloadAs[models.EntityRef](action)
		if err != nil {
			return st, err
		}
		if st.Doors.Order, err = remove(st.Doors.Doors, st.Doors.Order, ref.ID, models.EntityDoor); err != nil {
			return st, err
		}

	case addGroup:
		g, err := payloadAs[models.Group](action)
		if err != nil {
			return st, err
		}
		if _, exists := st.Groups.Groups[g.ID]; exists {
			return st, fmt.Errorf("group %s already exists", g.ID)
		}
		st.Groups.Order = upsert(st.Groups.Groups, st.Groups.Order, g.ID, g.Clone())
	case restoreGroup:
		g, at, err := restored[models.Group](action)
		if err != nil {
			return st, err
		}
		st.Groups.Order = place(st.Groups.Groups, st.Groups.Order, g.ID, g.Clone(), at)
	case updateGroup:
		u, err := payloadAs[models.EntityUpdate[models.GroupChanges]](action)
		if err != nil {
			return st, err
		}
		g, ok := st.Groups.Groups[u.ID]
		if !ok {
			return st, fmt.Errorf("group %s not found", u.ID)
		}
		st.Groups.Groups[u.ID] = g.Apply(u.Changes)
	case deleteGroup:
		ref, err := payloadAs[models.EntityRef](action)
		if err != nil {
			return st, err
		}
		if st.Groups.Order, err = remove(st.Groups.Groups, st.Groups.Order, ref.ID, models.EntityGroup); err != nil {
			return st, err
		}

	case models.ActionSetTransform:
		u, err := payloadAs[models.TransformUpdate](action)
		if err != nil {
			return st, err
		}
		if r, ok := st.Rooms.Rooms[u.ID]; ok {
			r.Transform = u.Transform.Clone()
			st.Rooms.Rooms[u.ID] = r
			return st, nil
		}
		if d, ok := st.Doors.Doors[u.ID]; ok {
			d.Transform = u.Transform.Clone()
			st.Doors.Doors[u.ID] = d
			return st, nil
		}
		return st, fmt.Errorf("object %s not found", u.ID)

	case models.ActionLoadPlan:
		switch p := action.Payload.(type) {
		case models.PlanDocument:
			return models.StateFromDocument(p), nil
		case *models.PlanDocument:
			return models.StateFromDocument(*p), nil
		case models.State:
			return p.Clone(), nil
		default:
			return st, fmt.Errorf("invalid payload %T for %s", action.Payload, action.Type)
		}
	case models.ActionResetPlan:
		return models.NewState(), nil

	default:
		return st, fmt.Errorf("unknown action type %q", action.Type)
	}
	return st, nil
}

func payloadAs[T any](action models.Action) (T, error) {
	switch p := action.Payload.(type) {
	case T:
		return p, nil
	case *T:
		if p != nil {
			return *p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid payload %T for %s", action.Payload, action.Type)
}

// restored reads a restore payload: a bare entity, which keeps or appends
// its position, or a models.Restored carrying its former index.
func restored[T any](action models.Action) (T, int, error) {
	switch p := action.Payload.(type) {
	case models.Restored[T]:
		return p.Entity, p.Index, nil
	case *models.Restored[T]:
		if p != nil {
			return p.Entity, p.Index, nil
		}
	}
	v, err := payloadAs[T](action)
	return v, -1, err
}

// place stores v under id. A new id is inserted at index at, or appended
// when at is negative or past the end.
func place[T any](items map[string]T, order []string, id string, v T, at int) []string {
	if _, exists := items[id]; exists || at < 0 || at >= len(order) {
		return upsert(items, order, id, v)
	}
	items[id] = v
	return slices.Insert(order, at, id)
}

// upsert stores v under id, appending id to order when it is new.
func upsert[T any](items map[string]T, order []string, id string, v T) []string {
	if _, exists := items[id]; !exists {
		order = append(order, id)
	}
	items[id] = v
	return order
}

func remove[T any](items map[string]T, order []string, id, entity string) ([]string, error) {
	if _, ok := items[id]; !ok {
		return order, fmt.Errorf("%s %s not found", entity, id)
	}
	delete(items, id)
	out := order[:0:0]
	for _, o := range order {
		if o != id {
			out = append(out, o)
		}
	}
	return out, nil
}
