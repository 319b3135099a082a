package contents

import (
	"context"
	"sync"
)

// Confirmer obtains an explicit yes or no from the operator before a
// destructive operation runs.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (confirmed bool, err error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Decision is an answer that was already given.
type Decision bool

const (
	Confirmed Decision = true
	Cancelled Decision = false
)

func (d Decision) Confirm(context.Context, string) (bool, error) {
	return bool(d), nil
}

type ConfirmationState int

const (
	ConfirmationIdle ConfirmationState = iota
	ConfirmationPending
	ConfirmationConfirmed
	ConfirmationCancelled
)

func (state ConfirmationState) String() string {
	switch state {
	case ConfirmationPending:
		return "pending"
	case ConfirmationConfirmed:
		return "confirmed"
	case ConfirmationCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// DeleteConfirmation is the two-step form of the deletion gate for surfaces
// that cannot block on a prompt: Request moves to pending, Resolve moves to
// confirmed or cancelled and yields the Decision to hand to Store.Delete.
type DeleteConfirmation struct {
	mu     sync.Mutex
	state  ConfirmationState
	postID int
}

// Request marks postID as awaiting confirmation. A newer request replaces
// an older pending one.
func (dc *DeleteConfirmation) Request(postID int) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.state = ConfirmationPending
	dc.postID = postID
}

// Pending reports the post awaiting confirmation, if any.
func (dc *DeleteConfirmation) Pending() (int, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.state != ConfirmationPending {
		return 0, false
	}

	return dc.postID, true
}

func (dc *DeleteConfirmation) State() ConfirmationState {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	return dc.state
}

// Resolve settles the pending request for postID.
func (dc *DeleteConfirmation) Resolve(postID int, confirmed bool) (Decision, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.state != ConfirmationPending || dc.postID != postID {
		return Cancelled, ErrNoPendingDeletion
	}

	if confirmed {
		dc.state = ConfirmationConfirmed
	} else {
		dc.state = ConfirmationCancelled
	}

	return Decision(confirmed), nil
}
