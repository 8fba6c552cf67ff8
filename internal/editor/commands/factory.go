package commands

import (
	"github.com/google/uuid"

	"floorplan-editor/internal/editor/models"
)

// IDGenerator produces ids for entities created by add commands.
type IDGenerator func() string

type FactoryOption func(*Factory)

// WithIDGenerator replaces the default uuid generator.
func WithIDGenerator(gen IDGenerator) FactoryOption {
	return func(f *Factory) { f.newID = gen }
}

func WithValidator(v *Validator) FactoryOption {
	return func(f *Factory) { f.validator = v }
}

// Factory builds the command for a mutation kind and payload.
type Factory struct {
	validator *Validator
	newID     IDGenerator
}

func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{validator: NewValidator(), newID: uuid.NewString}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) Validator() *Validator { return f.validator }

// NewComposite starts building a composite command.
func (f *Factory) NewComposite() *CompositeBuilder {
	return &CompositeBuilder{factory: f}
}

// CreateCommand checks that payload belongs to kind, copies it and returns
// a command ready to execute. Mismatches fail with INVALID_PAYLOAD.
func (f *Factory) CreateCommand(kind Kind, payload Payload, opts Options) (*Command, error) {
	if !knownKind(kind) {
		return nil, newError(CodeInvalidPayload, "unknown command type %q", kind)
	}
	if payload == nil || payload.Kind() != kind {
		return nil, newError(CodeInvalidPayload, "invalid payload for command %s", kind)
	}
	if err := payload.check(); err != nil {
		return nil, err
	}

	v := f.validator
	switch p := payload.(type) {
	case AddRoomPayload:
		p.Geometry = p.Geometry.Clone()
		p.Metadata = p.Metadata.Clone()
		p.Points = append([]models.Point(nil), p.Points...)
		if len(p.Points) == 0 {
			p.Points = nil
		}
		return New(kind, p, &addRoomOp{checked: checked{v, kind, p}, id: f.newID(), payload: p}, opts), nil
	case UpdateRoomPayload:
		p.Changes = p.Changes.Clone()
		return newUpdateCommand(v, roomEntity, p, p.ID, p.Changes, opts), nil
	case DeleteRoomPayload:
		return newDeleteCommand(v, roomEntity, p, p.ID, opts), nil

	case AddDoorPayload:
		p.Geometry = p.Geometry.Clone()
		p.Metadata = p.Metadata.Clone()
		return New(kind, p, &addDoorOp{checked: checked{v, kind, p}, id: f.newID(), payload: p}, opts), nil
	case UpdateDoorPayload:
		p.Changes = p.Changes.Clone()
		return newUpdateCommand(v, doorEntity, p, p.ID, p.Changes, opts), nil
	case DeleteDoorPayload:
		return newDeleteCommand(v, doorEntity, p, p.ID, opts), nil

	case TransformObjectsPayload:
		p.ObjectIDs = append([]string(nil), p.ObjectIDs...)
		p.Transform = *p.Transform.Clone()
		return New(kind, p, &transformOp{checked: checked{v, kind, p}, payload: p}, opts), nil

	case GroupObjectsPayload:
		p.ObjectIDs = append([]string{}, p.ObjectIDs...)
		p.Metadata = p.Metadata.Clone()
		return New(kind, p, &groupOp{checked: checked{v, kind, p}, id: f.newID(), payload: p}, opts), nil
	case UpdateGroupPayload:
		p.Changes = p.Changes.Clone()
		return newUpdateCommand(v, groupEntity, p, p.ID, p.Changes, opts), nil
	case UngroupObjectsPayload:
		return newDeleteCommand(v, groupEntity, p, p.ID, opts), nil

	case CompositePayload:
		for _, child := range p.Commands {
			if child.executed {
				return nil, newError(CodeInvalidPayload, "%s payload contains an already executed %s command", kind, child.kind)
			}
		}
		p.Commands = append([]*Command(nil), p.Commands...)
		return New(kind, p, newCompositeOp(p.Commands), opts), nil
	}
	return nil, newError(CodeInvalidPayload, "invalid payload for command %s", kind)
}

// CreateFromRequest decodes a wire request, including nested composite
// requests, and builds its command.
func (f *Factory) CreateFromRequest(req Request) (*Command, error) {
	if req.Type != KindComposite {
		payload, err := DecodePayload(req.Type, req.Payload)
		if err != nil {
			return nil, err
		}
		return f.CreateCommand(req.Type, payload, req.Options)
	}

	body, err := decodeStrict[compositeRequest](req.Payload)
	if err != nil {
		return nil, &Error{Code: CodeInvalidPayload, Message: "invalid payload for command " + string(KindComposite), Cause: err}
	}
	b := f.NewComposite()
	for _, childReq := range body.Commands {
		child, err := f.CreateFromRequest(childReq)
		if err != nil {
			return nil, err
		}
		b.AddCommand(child)
	}
	return b.Build(req.Options)
}

func knownKind(kind Kind) bool {
	switch kind {
	case KindAddRoom, KindUpdateRoom, KindDeleteRoom,
		KindAddDoor, KindUpdateDoor, KindDeleteDoor,
		KindTransformObjects,
		KindGroupObjects, KindUpdateGroup, KindUngroupObjects,
		KindComposite:
		return true
	}
	return false
}
