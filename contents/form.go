package contents

import (
	"context"
	"sync"
)

// Form is the new-post form state.
type Form struct {
	mu         sync.Mutex
	draft      Draft
	errors     FormErrors
	submitting bool
}

func NewForm() *Form {
	return &Form{
		errors: make(FormErrors),
	}
}

func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.draft
}

func (f *Form) Errors() FormErrors {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.errors.Clone()
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.submitting
}

// SetField stores value and clears the error of that field only.
// Inputs are disabled while a submission is outstanding.
func (f *Form) SetField(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitting {
		return
	}

	f.draft.Set(field, value)
	delete(f.errors, field)
}

// Submit validates the draft and, when it is valid, creates the post.
// The draft is reset only after the store confirms the creation.
func (f *Form) Submit(ctx context.Context, store *Store) (*Post, error) {
	f.mu.Lock()

	if f.submitting {
		f.mu.Unlock()

		return nil, ErrSubmissionInProgress
	}

	errs := Validate(f.draft)
	f.errors = errs

	if len(errs) > 0 {
		f.mu.Unlock()

		return nil, ValidationError{Errors: errs.Clone()}
	}

	draft := f.draft
	f.submitting = true
	f.mu.Unlock()

	post, err := store.Create(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitting = false

	if err != nil {
		return nil, err
	}

	f.draft = Draft{}
	f.errors = make(FormErrors)

	return post, nil
}
