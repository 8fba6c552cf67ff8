// Package service exposes the editor's operations to transports: one
// Workspace per editing session, with room, door, group and plan services
// on top of its command executor.
package service

import (
	"context"
	"log"
	"time"

	"floorplan-editor/internal/editor/commands"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/store"
)

// ============================================================
// Workspace
// ============================================================

// Workspace bundles the state store, command factory and executor of one
// editing session.
type Workspace struct {
	store    *store.Store
	factory  *commands.Factory
	executor *commands.Executor

	Rooms  *RoomService
	Doors  *DoorService
	Groups *GroupService
}

type Option func(*options)

type options struct {
	maxHistorySize int
	factoryOpts    []commands.FactoryOption
	initial        *models.State
}

func WithMaxHistorySize(n int) Option {
	return func(o *options) { o.maxHistorySize = n }
}

func WithIDGenerator(gen commands.IDGenerator) Option {
	return func(o *options) { o.factoryOpts = append(o.factoryOpts, commands.WithIDGenerator(gen)) }
}

// WithInitialState starts the workspace from st instead of an empty plan.
func WithInitialState(st models.State) Option {
	return func(o *options) { o.initial = &st }
}

func NewWorkspace(opts ...Option) *Workspace {
	o := options{maxHistorySize: commands.DefaultMaxHistorySize}
	for _, opt := range opts {
		opt(&o)
	}

	s := store.New()
	if o.initial != nil {
		s = store.NewWithState(*o.initial)
	}
	w := &Workspace{
		store:    s,
		factory:  commands.NewFactory(o.factoryOpts...),
		executor: commands.NewExecutor(s, commands.WithMaxHistorySize(o.maxHistorySize)),
	}
	w.Rooms = &RoomService{ws: w}
	w.Doors = &DoorService{ws: w}
	w.Groups = &GroupService{ws: w}
	return w
}

func (w *Workspace) Store() *store.Store                        { return w.store }
func (w *Workspace) Factory() *commands.Factory                 { return w.factory }
func (w *Workspace) Executor() *commands.Executor               { return w.executor }
func (w *Workspace) State() models.State                        { return w.store.GetState() }
func (w *Workspace) Document(now time.Time) models.PlanDocument { return w.State().Document(now) }

// Execute runs cmd and returns its result data, or the command error.
func (w *Workspace) Execute(ctx context.Context, cmd *commands.Command) (any, error) {
	res := w.executor.Execute(ctx, cmd)
	return res.Data, resultErr(res)
}

// Run builds a command of kind and executes it.
func (w *Workspace) Run(ctx context.Context, kind commands.Kind, payload commands.Payload, opts commands.Options) (any, error) {
	cmd, err := w.factory.CreateCommand(kind, payload, opts)
	if err != nil {
		return nil, err
	}
	return w.Execute(ctx, cmd)
}

// ExecuteRequest decodes and executes a wire request. Decoding errors are
// reported in the Result like any other failure.
func (w *Workspace) ExecuteRequest(ctx context.Context, req commands.Request) commands.Result {
	cmd, err := w.factory.CreateFromRequest(req)
	if err != nil {
		return commands.Failure(err)
	}
	return w.executor.Execute(ctx, cmd)
}

// Batch collects commands with build and executes them as one composite,
// so the whole batch is a single undo step.
func (w *Workspace) Batch(ctx context.Context, opts commands.Options, build func(b *commands.CompositeBuilder)) error {
	b := w.factory.NewComposite()
	build(b)
	cmd, err := b.Build(opts)
	if err != nil {
		return err
	}
	_, err = w.Execute(ctx, cmd)
	return err
}

// Transform sets the transform of each object.
func (w *Workspace) Transform(ctx context.Context, ids []string, t models.Transform) error {
	_, err := w.Run(ctx, commands.KindTransformObjects, commands.TransformObjectsPayload{ObjectIDs: ids, Transform: t}, commands.Options{})
	return err
}

func (w *Workspace) Undo(ctx context.Context) error {
	return resultErr(w.executor.Undo(ctx))
}

func (w *Workspace) Redo(ctx context.Context) error {
	return resultErr(w.executor.Redo(ctx))
}

// ============================================================
// History
// ============================================================

type HistoryEntry struct {
	Kind    commands.Kind    `json:"kind"`
	Payload commands.Payload `json:"payload,omitempty"`
}

type HistoryView struct {
	CanUndo        bool           `json:"canUndo"`
	CanRedo        bool           `json:"canRedo"`
	MaxHistorySize int            `json:"maxHistorySize"`
	Undo           []HistoryEntry `json:"undo"`
	Redo           []HistoryEntry `json:"redo"`
}

// History describes both stacks, oldest entry first.
func (w *Workspace) History() HistoryView {
	h := w.executor.History()
	return HistoryView{
		CanUndo:        len(h.UndoStack) > 0,
		CanRedo:        len(h.RedoStack) > 0,
		MaxHistorySize: w.executor.MaxHistorySize(),
		Undo:           entries(h.UndoStack),
		Redo:           entries(h.RedoStack),
	}
}

func (w *Workspace) ClearHistory() {
	w.executor.ClearHistory()
}

func entries(cmds []*commands.Command) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(cmds))
	for _, c := range cmds {
		e := HistoryEntry{Kind: c.Kind()}
		if c.Kind() != commands.KindComposite {
			e.Payload = c.Payload()
		}
		out = append(out, e)
	}
	return out
}

// ============================================================
// Whole-plan replacement
// ============================================================

// Load replaces the plan with doc and clears the history. Commands recorded
// against the previous plan can not be undone against the new one.
func (w *Workspace) Load(doc models.PlanDocument) error {
	if err := w.replace(models.Action{Type: models.ActionLoadPlan, Payload: doc}); err != nil {
		return err
	}
	log.Printf("[EDITOR] plan loaded: %d rooms, %d doors, %d groups", len(doc.Rooms), len(doc.Doors), len(doc.Groups))
	return nil
}

// Reset empties the plan and clears the history.
func (w *Workspace) Reset() error {
	return w.replace(models.Action{Type: models.ActionResetPlan})
}

// replace dispatches a whole-plan action and clears the history without
// letting a command run in between.
func (w *Workspace) replace(action models.Action) error {
	return resultErr(w.executor.Exclusive(func() error {
		if err := w.store.Dispatch(action); err != nil {
			return err
		}
		w.executor.ClearHistory()
		return nil
	}))
}

// resultErr turns a failed Result back into the error that caused it.
func resultErr(res commands.Result) error {
	if res.Success {
		return nil
	}
	if res.Err != nil {
		return res.Err
	}
	return &commands.Error{Code: res.Code, Message: res.Error, Errors: res.Errors}
}
