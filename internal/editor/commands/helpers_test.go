package commands

import (
	"fmt"
	"sync"
	"testing"

	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/store"
)

// recordingStore remembers every action dispatched through it.
type recordingStore struct {
	*store.Store
	mu      sync.Mutex
	actions []models.Action
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: store.New()}
}

func (r *recordingStore) Dispatch(a models.Action) error {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
	return r.Store.Dispatch(a)
}

func (r *recordingStore) take() []models.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.actions
	r.actions = nil
	return out
}

func actionTypes(actions []models.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Type
	}
	return out
}

func sequentialIDs() IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type harness struct {
	store    *recordingStore
	factory  *Factory
	executor *Executor
}

func newHarness(t *testing.T, opts ...ExecutorOption) *harness {
	t.Helper()
	s := newRecordingStore()
	return &harness{
		store:    s,
		factory:  NewFactory(WithIDGenerator(sequentialIDs())),
		executor: NewExecutor(s, opts...),
	}
}

func (h *harness) command(t *testing.T, kind Kind, payload Payload, opts ...Options) *Command {
	t.Helper()
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	cmd, err := h.factory.CreateCommand(kind, payload, o)
	if err != nil {
		t.Fatalf("create %s: %v", kind, err)
	}
	return cmd
}

func polygon(coords ...float64) models.Geometry {
	pts := make([]models.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, models.Point{X: coords[i], Y: coords[i+1]})
	}
	return models.NewPolygon(pts...)
}

func squareRoom(x, y, size float64) AddRoomPayload {
	return AddRoomPayload{
		Geometry: polygon(x, y, x+size, y, x+size, y+size, x, y+size),
		Metadata: models.Metadata{Name: "Room", Type: "room"},
	}
}

// blockingOp parks in Apply until released.
type blockingOp struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingOp() *blockingOp {
	return &blockingOp{started: make(chan struct{}), release: make(chan struct{})}
}

func (o *blockingOp) Validate(*Context) ValidationResult { return valid() }
func (o *blockingOp) StateToStore(*Context) (any, error) { return "blocking", nil }
func (o *blockingOp) Revert(*Context, any) error         { return nil }
func (o *blockingOp) Apply(*Context) error {
	close(o.started)
	<-o.release
	return nil
}

// scriptedOp returns canned errors or panics.
type scriptedOp struct {
	applyErr  error
	revertErr error
	panicMsg  string
}

func (o *scriptedOp) Validate(*Context) ValidationResult { return valid() }
func (o *scriptedOp) StateToStore(*Context) (any, error) { return "scripted", nil }
func (o *scriptedOp) Revert(*Context, any) error         { return o.revertErr }
func (o *scriptedOp) Apply(*Context) error {
	if o.panicMsg != "" {
		panic(o.panicMsg)
	}
	return o.applyErr
}
