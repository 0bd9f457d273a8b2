package core

import (
	"fmt"
	"sync"
)

// DialogState names the active dialog.
type DialogState int

const (
	Closed DialogState = iota
	Creating
	Editing
	Viewing
	ConfirmingDelete
)

func (s DialogState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case Viewing:
		return "viewing"
	case ConfirmingDelete:
		return "confirming-delete"
	default:
		return fmt.Sprintf("DialogState(%d)", int(s))
	}
}

// Dialog is the active dialog and the target it operates on.
// Creating has no record and no position.
type Dialog[T Record] struct {
	State    DialogState
	Position int
	Record   T
	// Title is the label shown by the delete confirmation.
	Title string
	// Ticket identifies this opening of the dialog.
	Ticket uint64
}

// HasTarget reports whether the dialog refers to an existing record.
func (d Dialog[T]) HasTarget() bool {
	return d.State == Editing || d.State == Viewing || d.State == ConfirmingDelete
}

func (d Dialog[T]) String() string {
	switch d.State {
	case Editing, Viewing:
		return fmt.Sprintf("%s(%d)", d.State, d.Position)
	case ConfirmingDelete:
		return fmt.Sprintf("%s(%d, %q)", d.State, d.Position, d.Title)
	default:
		return d.State.String()
	}
}

// Workflow tracks which dialog is open and what it targets.
type Workflow[T Record] struct {
	mu      sync.Mutex
	current Dialog[T]
	tickets uint64
}

// NewWorkflow returns a closed workflow.
func NewWorkflow[T Record]() *Workflow[T] {
	return &Workflow[T]{current: Dialog[T]{State: Closed, Position: NoPosition}}
}

// Current returns the active dialog.
func (w *Workflow[T]) Current() Dialog[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// OpenCreate moves Closed to Creating.
func (w *Workflow[T]) OpenCreate() (Dialog[T], error) {
	return w.open(Dialog[T]{State: Creating, Position: NoPosition}, Closed)
}

// OpenEdit moves Closed or Viewing to Editing(position).
func (w *Workflow[T]) OpenEdit(position int, rec T) (Dialog[T], error) {
	return w.open(Dialog[T]{State: Editing, Position: position, Record: rec}, Closed, Viewing)
}

// OpenView moves Closed to Viewing(position).
func (w *Workflow[T]) OpenView(position int, rec T) (Dialog[T], error) {
	return w.open(Dialog[T]{State: Viewing, Position: position, Record: rec}, Closed)
}

// OpenConfirmDelete moves Closed or Viewing to ConfirmingDelete(position, title).
func (w *Workflow[T]) OpenConfirmDelete(position int, rec T) (Dialog[T], error) {
	d := Dialog[T]{State: ConfirmingDelete, Position: position, Record: rec, Title: rec.RecordTitle()}
	return w.open(d, Closed, Viewing)
}

func (w *Workflow[T]) open(next Dialog[T], from ...DialogState) (Dialog[T], error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	allowed := false
	for _, s := range from {
		if w.current.State == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return w.current, Wrap(KindValidation, "workflow", ErrInvalidTransition.Message,
			fmt.Errorf("%s -> %s", w.current, next.State))
	}

	w.tickets++
	next.Ticket = w.tickets
	w.current = next
	return next, nil
}

// Close moves any state to Closed.
func (w *Workflow[T]) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = Dialog[T]{State: Closed, Position: NoPosition}
}

// CloseTicket closes the dialog only if it is still the one identified by
// ticket. It reports whether it closed anything.
func (w *Workflow[T]) CloseTicket(ticket uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current.State == Closed || w.current.Ticket != ticket {
		return false
	}
	w.current = Dialog[T]{State: Closed, Position: NoPosition}
	return true
}

// InvalidateFrom closes the dialog if it targets a position >= position.
func (w *Workflow[T]) InvalidateFrom(position int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.current.HasTarget() || w.current.Position < position {
		return false
	}
	w.current = Dialog[T]{State: Closed, Position: NoPosition}
	return true
}
