package commands

import (
	"bytes"
	"encoding/json"
	"strings"

	"floorplan-editor/internal/editor/models"
)

// Kind identifies the mutation a command performs.
type Kind string

const (
	KindAddRoom          Kind = "ADD_ROOM"
	KindUpdateRoom       Kind = "UPDATE_ROOM"
	KindDeleteRoom       Kind = "DELETE_ROOM"
	KindAddDoor          Kind = "ADD_DOOR"
	KindUpdateDoor       Kind = "UPDATE_DOOR"
	KindDeleteDoor       Kind = "DELETE_DOOR"
	KindTransformObjects Kind = "TRANSFORM_OBJECTS"
	KindGroupObjects     Kind = "GROUP_OBJECTS"
	KindUpdateGroup      Kind = "UPDATE_GROUP"
	KindUngroupObjects   Kind = "UNGROUP_OBJECTS"
	KindComposite        Kind = "COMPOSITE"
)

// Payload is the kind-specific, immutable input of a command. Each payload
// type answers exactly one Kind.
type Payload interface {
	Kind() Kind
	check() error
}

type AddRoomPayload struct {
	Geometry models.Geometry `json:"geometry"`
	Metadata models.Metadata `json:"metadata"`
	Points   []models.Point  `json:"points,omitempty"`
}

type UpdateRoomPayload struct {
	ID      string             `json:"id"`
	Changes models.RoomChanges `json:"changes"`
}

type DeleteRoomPayload struct {
	ID string `json:"id"`
}

type AddDoorPayload struct {
	Geometry models.Geometry `json:"geometry"`
	Metadata models.Metadata `json:"metadata"`
	RoomID   string          `json:"roomId,omitempty"`
}

type UpdateDoorPayload struct {
	ID      string             `json:"id"`
	Changes models.DoorChanges `json:"changes"`
}

type DeleteDoorPayload struct {
	ID string `json:"id"`
}

type TransformObjectsPayload struct {
	ObjectIDs []string         `json:"objectIds"`
	Transform models.Transform `json:"transform"`
}

type GroupObjectsPayload struct {
	ObjectIDs []string        `json:"objectIds"`
	Metadata  models.Metadata `json:"metadata"`
}

type UpdateGroupPayload struct {
	ID      string              `json:"id"`
	Changes models.GroupChanges `json:"changes"`
}

type UngroupObjectsPayload struct {
	ID string `json:"id"`
}

// CompositePayload carries already-built child commands.
type CompositePayload struct {
	Commands []*Command
}

func (AddRoomPayload) Kind() Kind          { return KindAddRoom }
func (UpdateRoomPayload) Kind() Kind       { return KindUpdateRoom }
func (DeleteRoomPayload) Kind() Kind       { return KindDeleteRoom }
func (AddDoorPayload) Kind() Kind          { return KindAddDoor }
func (UpdateDoorPayload) Kind() Kind       { return KindUpdateDoor }
func (DeleteDoorPayload) Kind() Kind       { return KindDeleteDoor }
func (TransformObjectsPayload) Kind() Kind { return KindTransformObjects }
func (GroupObjectsPayload) Kind() Kind     { return KindGroupObjects }
func (UpdateGroupPayload) Kind() Kind      { return KindUpdateGroup }
func (UngroupObjectsPayload) Kind() Kind   { return KindUngroupObjects }
func (CompositePayload) Kind() Kind        { return KindComposite }

func (p AddRoomPayload) check() error        { return requireGeometry(KindAddRoom, p.Geometry) }
func (p UpdateRoomPayload) check() error     { return requireID(KindUpdateRoom, p.ID) }
func (p DeleteRoomPayload) check() error     { return requireID(KindDeleteRoom, p.ID) }
func (p AddDoorPayload) check() error        { return requireGeometry(KindAddDoor, p.Geometry) }
func (p UpdateDoorPayload) check() error     { return requireID(KindUpdateDoor, p.ID) }
func (p DeleteDoorPayload) check() error     { return requireID(KindDeleteDoor, p.ID) }
func (p UpdateGroupPayload) check() error    { return requireID(KindUpdateGroup, p.ID) }
func (p UngroupObjectsPayload) check() error { return requireID(KindUngroupObjects, p.ID) }

func (p TransformObjectsPayload) check() error {
	if len(p.ObjectIDs) == 0 {
		return newError(CodeInvalidPayload, "%s payload requires objectIds", KindTransformObjects)
	}
	return nil
}

func (p GroupObjectsPayload) check() error {
	if p.ObjectIDs == nil {
		return newError(CodeInvalidPayload, "%s payload requires objectIds", KindGroupObjects)
	}
	return nil
}

func (p CompositePayload) check() error {
	if len(p.Commands) == 0 {
		return newError(CodeInvalidPayload, "%s payload requires at least one command", KindComposite)
	}
	for i, c := range p.Commands {
		if c == nil {
			return newError(CodeInvalidPayload, "%s payload command %d is nil", KindComposite, i)
		}
	}
	return nil
}

func requireID(kind Kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return newError(CodeInvalidPayload, "%s payload requires an id", kind)
	}
	return nil
}

func requireGeometry(kind Kind, g models.Geometry) error {
	if g.Type == "" {
		return newError(CodeInvalidPayload, "%s payload requires geometry", kind)
	}
	return nil
}

// ============================================================
// JSON decoding
// ============================================================

// Request is the wire form of a command.
type Request struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Options Options         `json:"options"`
}

type compositeRequest struct {
	Commands []Request `json:"commands"`
}

// DecodePayload decodes raw into the payload type of kind. Unknown fields
// are rejected, so a payload must have exactly the shape of its kind.
// Composite payloads are decoded by Factory.CreateFromRequest.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	var p Payload
	var err error
	switch kind {
	case KindAddRoom:
		p, err = decodeStrict[AddRoomPayload](raw)
	case KindUpdateRoom:
		p, err = decodeStrict[UpdateRoomPayload](raw)
	case KindDeleteRoom:
		p, err = decodeStrict[DeleteRoomPayload](raw)
	case KindAddDoor:
		p, err = decodeStrict[AddDoorPayload](raw)
	case KindUpdateDoor:
		p, err = decodeStrict[UpdateDoorPayload](raw)
	case KindDeleteDoor:
		p, err = decodeStrict[DeleteDoorPayload](raw)
	case KindTransformObjects:
		p, err = decodeStrict[TransformObjectsPayload](raw)
	case KindGroupObjects:
		p, err = decodeStrict[GroupObjectsPayload](raw)
	case KindUpdateGroup:
		p, err = decodeStrict[UpdateGroupPayload](raw)
	case KindUngroupObjects:
		p, err = decodeStrict[UngroupObjectsPayload](raw)
	default:
		return nil, newError(CodeInvalidPayload, "unknown command type %q", kind)
	}
	if err != nil {
		return nil, &Error{Code: CodeInvalidPayload, Message: "invalid payload for command " + string(kind), Cause: err}
	}
	return p, nil
}

func decodeStrict[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	err := dec.Decode(&out)
	return out, err
}
