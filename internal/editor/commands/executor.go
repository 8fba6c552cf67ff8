package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const DefaultMaxHistorySize = 100

// ErrBusyMessage is reported when a call arrives while another command runs.
const ErrBusyMessage = "Another command is currently executing"

// Result is what the executor reports for every call. Command errors never
// escape the executor; they are folded into a failed Result.
type Result struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Code    Code     `json:"code,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
	Err     error    `json:"-"`
}

// Failure folds err into a failed Result.
func Failure(err error) Result {
	res := Result{Success: false, Error: err.Error(), Code: CodeOf(err), Err: err}
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		res.Errors = append([]string(nil), cmdErr.Errors...)
	}
	return res
}

func busy(code Code) Result {
	return Failure(&Error{Code: code, Message: ErrBusyMessage})
}

// History is a copy of the executor's stacks, oldest entry first.
type History struct {
	UndoStack []*Command
	RedoStack []*Command
}

type ExecutorOption func(*Executor)

func WithMaxHistorySize(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 0 {
			e.maxHistorySize = n
		}
	}
}

// Executor runs commands one at a time and keeps the undo/redo history.
// A call made while another is in flight is rejected, not queued. There is
// no timeout: a command that never returns keeps the executor busy.
type Executor struct {
	store     Store
	executing atomic.Bool

	mu             sync.Mutex
	undoStack      []*Command
	redoStack      []*Command
	maxHistorySize int
}

func NewExecutor(store Store, opts ...ExecutorOption) *Executor {
	e := &Executor{store: store, maxHistorySize: DefaultMaxHistorySize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs cmd against a fresh context. On success a history-tracked
// command is pushed on the undo stack and the redo stack is cleared.
func (e *Executor) Execute(ctx context.Context, cmd *Command) (res Result) {
	if cmd == nil {
		return Failure(newError(CodeInvalidPayload, "command is required"))
	}
	if !e.executing.CompareAndSwap(false, true) {
		return busy(CodeExecution)
	}
	defer e.executing.Store(false)
	defer recoverInto(&res, CodeExecution)

	if err := cmd.Execute(NewContext(ctx, e.store)); err != nil {
		return Failure(err)
	}
	if !cmd.options.SkipHistory {
		e.mu.Lock()
		e.pushUndo(cmd)
		e.redoStack = nil
		e.mu.Unlock()
	}
	return Result{Success: true, Data: cmd.Result()}
}

// Undo reverts the most recent command and moves it to the redo stack. A
// command whose undo fails is dropped from the history.
func (e *Executor) Undo(ctx context.Context) (res Result) {
	if !e.executing.CompareAndSwap(false, true) {
		return busy(CodeUndo)
	}
	defer e.executing.Store(false)
	defer recoverInto(&res, CodeUndo)

	e.mu.Lock()
	cmd := pop(&e.undoStack)
	e.mu.Unlock()
	if cmd == nil {
		return Failure(newError(CodeUndo, "Nothing to undo"))
	}

	if err := cmd.Undo(NewContext(ctx, e.store)); err != nil {
		return Failure(err)
	}
	e.mu.Lock()
	e.redoStack = append(e.redoStack, cmd)
	e.mu.Unlock()
	return Result{Success: true, Data: cmd.Result()}
}

// Redo re-applies the most recently undone command and moves it back to
// the undo stack. A command whose redo fails is dropped from the history.
func (e *Executor) Redo(ctx context.Context) (res Result) {
	if !e.executing.CompareAndSwap(false, true) {
		return busy(CodeRedo)
	}
	defer e.executing.Store(false)
	defer recoverInto(&res, CodeRedo)

	e.mu.Lock()
	cmd := pop(&e.redoStack)
	e.mu.Unlock()
	if cmd == nil {
		return Failure(newError(CodeRedo, "Nothing to redo"))
	}

	if err := cmd.Redo(NewContext(ctx, e.store)); err != nil {
		return Failure(err)
	}
	e.mu.Lock()
	e.pushUndo(cmd)
	e.mu.Unlock()
	return Result{Success: true, Data: cmd.Result()}
}

// Exclusive runs fn inside the executor's single-flight section, so no
// command can execute, undo or redo while it runs. It is rejected like any
// other call when the executor is busy.
func (e *Executor) Exclusive(fn func() error) (res Result) {
	if !e.executing.CompareAndSwap(false, true) {
		return busy(CodeExecution)
	}
	defer e.executing.Store(false)
	defer recoverInto(&res, CodeExecution)

	if err := fn(); err != nil {
		return Failure(wrap(CodeExecution, err))
	}
	return Result{Success: true}
}

func (e *Executor) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.undoStack = nil
	e.redoStack = nil
}

func (e *Executor) History() History {
	e.mu.Lock()
	defer e.mu.Unlock()
	return History{
		UndoStack: append([]*Command{}, e.undoStack...),
		RedoStack: append([]*Command{}, e.redoStack...),
	}
}

func (e *Executor) CanUndo() bool { return e.UndoSize() > 0 }
func (e *Executor) CanRedo() bool { return e.RedoSize() > 0 }

func (e *Executor) UndoSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undoStack)
}

func (e *Executor) RedoSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.redoStack)
}

func (e *Executor) IsExecuting() bool { return e.executing.Load() }

func (e *Executor) MaxHistorySize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxHistorySize
}

// SetMaxHistorySize changes the bound; the oldest undo entries beyond it are
// evicted immediately.
func (e *Executor) SetMaxHistorySize(n int) error {
	if n < 0 {
		return fmt.Errorf("max history size must not be negative, got %d", n)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxHistorySize = n
	e.evict()
	return nil
}

// pushUndo must be called with mu held.
func (e *Executor) pushUndo(cmd *Command) {
	e.undoStack = append(e.undoStack, cmd)
	e.evict()
}

// evict drops the oldest undo entries over the bound. Must be called with mu held.
func (e *Executor) evict() {
	if excess := len(e.undoStack) - e.maxHistorySize; excess > 0 {
		e.undoStack = append([]*Command(nil), e.undoStack[excess:]...)
	}
}

func pop(stack *[]*Command) *Command {
	s := *stack
	if len(s) == 0 {
		return nil
	}
	cmd := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return cmd
}

func recoverInto(res *Result, code Code) {
	if r := recover(); r != nil {
		*res = Failure(&Error{Code: code, Message: fmt.Sprintf("command panicked: %v", r)})
	}
}
