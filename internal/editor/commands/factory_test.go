package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"floorplan-editor/internal/editor/models"
)

func TestCreateCommandRejectsBadInput(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		name    string
		kind    Kind
		payload Payload
	}{
		{name: "unknown kind", kind: Kind("PAINT_WALL"), payload: DeleteRoomPayload{ID: "a"}},
		{name: "nil payload", kind: KindDeleteRoom},
		{name: "payload of another kind", kind: KindDeleteRoom, payload: DeleteDoorPayload{ID: "a"}},
		{name: "missing id", kind: KindUpdateRoom, payload: UpdateRoomPayload{ID: "  "}},
		{name: "missing geometry", kind: KindAddRoom, payload: AddRoomPayload{}},
		{name: "transform without targets", kind: KindTransformObjects, payload: TransformObjectsPayload{}},
		{name: "empty composite", kind: KindComposite, payload: CompositePayload{}},
		{name: "nil child", kind: KindComposite, payload: CompositePayload{Commands: []*Command{nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := f.CreateCommand(tt.kind, tt.payload, Options{})
			require.Nil(t, cmd)
			require.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestCreateCommandCopiesPayload(t *testing.T) {
	h := newHarness(t)

	payload := squareRoom(0, 0, 10)
	cmd := h.command(t, KindAddRoom, payload)
	payload.Geometry.Data.Points[0] = models.Point{X: -50, Y: -50}

	require.True(t, h.executor.Execute(context.Background(), cmd).Success)
	room, ok := h.store.GetState().Room("id-1")
	require.True(t, ok)
	require.Equal(t, models.Point{}, room.Geometry.Data.Points[0])
	require.Len(t, room.Points, 4)
}

func TestAddRoomKeepsExplicitBoundaryPoints(t *testing.T) {
	h := newHarness(t)

	payload := squareRoom(0, 0, 10)
	payload.Points = []models.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	require.True(t, h.executor.Execute(context.Background(), h.command(t, KindAddRoom, payload)).Success)

	room, _ := h.store.GetState().Room("id-1")
	require.Equal(t, payload.Points, room.Points)
}

func TestFactoryUsesIDGenerator(t *testing.T) {
	f := NewFactory(WithIDGenerator(func() string { return "fixed" }))
	s := newRecordingStore()
	e := NewExecutor(s)

	cmd, err := f.CreateCommand(KindAddDoor, AddDoorPayload{Geometry: models.NewRect(0, 0, 1, 1)}, Options{})
	require.NoError(t, err)
	res := e.Execute(context.Background(), cmd)
	require.True(t, res.Success)
	require.Equal(t, "fixed", res.Data)
	require.Equal(t, "fixed", cmd.Result())
	_, ok := s.GetState().Door("fixed")
	require.True(t, ok)
}

func TestDefaultFactoryGeneratesUniqueIDs(t *testing.T) {
	f := NewFactory()
	s := newRecordingStore()
	e := NewExecutor(s)

	seen := map[any]bool{}
	for i := 0; i < 3; i++ {
		cmd, err := f.CreateCommand(KindAddDoor, AddDoorPayload{Geometry: models.NewRect(float64(i*10), 0, 1, 1)}, Options{})
		require.NoError(t, err)
		res := e.Execute(context.Background(), cmd)
		require.True(t, res.Success, res.Error)
		require.NotEmpty(t, res.Data)
		require.False(t, seen[res.Data])
		seen[res.Data] = true
	}
}

func TestUpdateUsesEntityActionTypes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.True(t, h.executor.Execute(ctx, h.command(t, KindAddRoom, squareRoom(0, 0, 10))).Success)
	require.True(t, h.executor.Execute(ctx, h.command(t, KindAddRoom, squareRoom(10, 0, 10))).Success)
	group := h.executor.Execute(ctx, h.command(t, KindGroupObjects, GroupObjectsPayload{ObjectIDs: []string{"id-1", "id-2"}}))
	require.True(t, group.Success, group.Error)
	require.Equal(t, "id-3", group.Data)

	name := "Wing"
	require.True(t, h.executor.Execute(ctx, h.command(t, KindUpdateGroup, UpdateGroupPayload{ID: "id-3", Changes: models.GroupChanges{Name: &name}})).Success)
	require.True(t, h.executor.Undo(ctx).Success)
	require.True(t, h.executor.Execute(ctx, h.command(t, KindUngroupObjects, UngroupObjectsPayload{ID: "id-3"})).Success)
	require.True(t, h.executor.Undo(ctx).Success)

	require.Equal(t, []string{
		"room/addRoom", "room/addRoom", "group/addGroup",
		"group/updateGroup", "group/restoreGroup",
		"group/deleteGroup", "group/restoreGroup",
	}, actionTypes(h.store.take()))
}

func TestUpdateMissingEntityFailsWithNotFound(t *testing.T) {
	h := newHarness(t)

	name := "x"
	res := h.executor.Execute(context.Background(), h.command(t, KindUpdateRoom, UpdateRoomPayload{ID: "ghost", Changes: models.RoomChanges{Name: &name}}))
	require.False(t, res.Success)
	require.Equal(t, CodeNotFound, res.Code)
	require.Equal(t, "room ghost not found", res.Error)
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(KindAddDoor, json.RawMessage(`{"geometry":{"type":"rect","data":{"x":1,"y":2,"width":3,"height":4}},"metadata":{"name":"Front","type":"door"},"roomId":"r1"}`))
	require.NoError(t, err)
	require.Equal(t, AddDoorPayload{
		Geometry: models.NewRect(1, 2, 3, 4),
		Metadata: models.Metadata{Name: "Front", Type: "door"},
		RoomID:   "r1",
	}, p)

	_, err = DecodePayload(KindDeleteRoom, json.RawMessage(`{"id":"a","extra":true}`))
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodePayload(KindDeleteRoom, json.RawMessage(`[1,2]`))
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = DecodePayload(Kind("NOPE"), json.RawMessage(`{}`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestCreateFromRequestBuildsNestedComposite(t *testing.T) {
	h := newHarness(t)

	body := `{
		"type": "COMPOSITE",
		"options": {"skipValidation": false},
		"payload": {"commands": [
			{"type": "ADD_ROOM", "payload": {"geometry": {"type": "polygon", "data": {"points": [{"x":0,"y":0},{"x":10,"y":0},{"x":10,"y":10},{"x":0,"y":10}]}}, "metadata": {"name": "Hall", "type": "room"}}},
			{"type": "COMPOSITE", "payload": {"commands": [
				{"type": "ADD_DOOR", "payload": {"geometry": {"type": "rect", "data": {"x": 40, "y": 40, "width": 1, "height": 1}}, "metadata": {"name": "D", "type": "door"}}}
			]}}
		]}
	}`
	var req Request
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	cmd, err := h.factory.CreateFromRequest(req)
	require.NoError(t, err)
	require.Equal(t, KindComposite, cmd.Kind())
	children := cmd.Operation().(*compositeOp).Children()
	require.Len(t, children, 2)
	require.Equal(t, KindAddRoom, children[0].Kind())
	require.Equal(t, KindComposite, children[1].Kind())

	require.True(t, h.executor.Execute(context.Background(), cmd).Success)
	st := h.store.GetState()
	require.Len(t, st.Rooms.Rooms, 1)
	require.Len(t, st.Doors.Doors, 1)

	_, err = h.factory.CreateFromRequest(Request{Type: KindComposite, Payload: json.RawMessage(`{"commands":[{"type":"ADD_ROOM","payload":{"bogus":1}}]}`)})
	require.ErrorIs(t, err, ErrInvalidPayload)
}
