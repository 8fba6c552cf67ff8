package service

import (
	"context"
	"fmt"

	"floorplan-editor/internal/editor/commands"
	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Rooms
// ============================================================

type RoomService struct {
	ws *Workspace
}

// Add creates a room and returns its id.
func (s *RoomService) Add(ctx context.Context, p commands.AddRoomPayload, opts commands.Options) (string, error) {
	return runAdd(ctx, s.ws, commands.KindAddRoom, p, opts)
}

// Update applies changes to a room. A new geometry without explicit points
// also replaces the room's boundary points with the geometry's outline.
func (s *RoomService) Update(ctx context.Context, id string, changes models.RoomChanges) error {
	if changes.Geometry != nil && changes.Points == nil {
		changes.Points = geometry.OpenRing(geometry.Points(*changes.Geometry))
		if changes.Points == nil {
			changes.Points = []models.Point{}
		}
	}
	_, err := s.ws.Run(ctx, commands.KindUpdateRoom, commands.UpdateRoomPayload{ID: id, Changes: changes}, commands.Options{})
	return err
}

func (s *RoomService) Delete(ctx context.Context, id string) error {
	_, err := s.ws.Run(ctx, commands.KindDeleteRoom, commands.DeleteRoomPayload{ID: id}, commands.Options{})
	return err
}

func (s *RoomService) Get(id string) (models.Room, bool) { return s.ws.State().Room(id) }
func (s *RoomService) List() []models.Room               { return s.ws.State().RoomList() }

// ============================================================
// Doors
// ============================================================

type DoorService struct {
	ws *Workspace
}

// Add creates a door and returns its id.
func (s *DoorService) Add(ctx context.Context, p commands.AddDoorPayload, opts commands.Options) (string, error) {
	return runAdd(ctx, s.ws, commands.KindAddDoor, p, opts)
}

func (s *DoorService) Update(ctx context.Context, id string, changes models.DoorChanges) error {
	_, err := s.ws.Run(ctx, commands.KindUpdateDoor, commands.UpdateDoorPayload{ID: id, Changes: changes}, commands.Options{})
	return err
}

func (s *DoorService) Delete(ctx context.Context, id string) error {
	_, err := s.ws.Run(ctx, commands.KindDeleteDoor, commands.DeleteDoorPayload{ID: id}, commands.Options{})
	return err
}

func (s *DoorService) Get(id string) (models.Door, bool) { return s.ws.State().Door(id) }
func (s *DoorService) List() []models.Door               { return s.ws.State().DoorList() }

// ============================================================
// Groups
// ============================================================

type GroupService struct {
	ws *Workspace
}

// Group creates a group over objectIDs and returns its id. An object can
// belong to one group only.
func (s *GroupService) Group(ctx context.Context, objectIDs []string, meta models.Metadata) (string, error) {
	st := s.ws.State()
	var errs []string
	for _, id := range objectIDs {
		if gid, ok := st.GroupOf(id); ok {
			errs = append(errs, fmt.Sprintf("Object %s already belongs to group %s", id, gid))
		}
	}
	if len(errs) > 0 {
		return "", &commands.Error{Code: commands.CodeValidation, Message: "validation failed", Errors: errs}
	}
	return runAdd(ctx, s.ws, commands.KindGroupObjects, commands.GroupObjectsPayload{ObjectIDs: objectIDs, Metadata: meta}, commands.Options{})
}

func (s *GroupService) Update(ctx context.Context, id string, changes models.GroupChanges) error {
	_, err := s.ws.Run(ctx, commands.KindUpdateGroup, commands.UpdateGroupPayload{ID: id, Changes: changes}, commands.Options{})
	return err
}

// Ungroup removes the group; its members are kept.
func (s *GroupService) Ungroup(ctx context.Context, id string) error {
	_, err := s.ws.Run(ctx, commands.KindUngroupObjects, commands.UngroupObjectsPayload{ID: id}, commands.Options{})
	return err
}

func (s *GroupService) Get(id string) (models.Group, bool) { return s.ws.State().Group(id) }
func (s *GroupService) List() []models.Group               { return s.ws.State().GroupList() }

func runAdd(ctx context.Context, ws *Workspace, kind commands.Kind, p commands.Payload, opts commands.Options) (string, error) {
	data, err := ws.Run(ctx, kind, p, opts)
	if err != nil {
		return "", err
	}
	id, _ := data.(string)
	return id, nil
}
