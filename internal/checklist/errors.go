package checklist

import (
	"errors"
	"fmt"

	"github.com/nhle/checklist-sync/internal/api"
	"github.com/nhle/checklist-sync/internal/model"
)

// ErrEmptyTitle is returned when an item title is empty after trimming.
var ErrEmptyTitle = errors.New("checklist: item title must not be empty")

// InvalidNameError is returned at construction time when a display name
// normalizes to an empty slug.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid checklist name %q: normalizes to an empty slug", e.Name)
}

// ChecklistNotFoundError indicates an operation required the checklist
// to exist and it did not.
type ChecklistNotFoundError struct {
	Slug string
}

func (e *ChecklistNotFoundError) Error() string {
	return fmt.Sprintf("checklist %q not found", e.Slug)
}

// ItemNotFoundError indicates the referenced item ID is absent from the
// checklist. Against local storage this means the caller's state is stale.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("checklist item %q not found", e.ItemID)
}

// ChecklistUnavailableError indicates the service reported the
// checklist exists (create conflict) but a follow-up fetch could not
// retrieve it.
type ChecklistUnavailableError struct {
	Slug string
}

func (e *ChecklistUnavailableError) Error() string {
	return fmt.Sprintf("checklist %q exists but could not be fetched", e.Slug)
}

// APIError is a remote call failure for a reason other than "not found".
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("checklist API error (%d): %s", e.Status, e.Message)
	}
	return "checklist API error: " + e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// OpError wraps an unrecognized failure, preserving the original cause
// for diagnostics. It is the catch-all of the error taxonomy; no public
// operation lets an unclassified error escape.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("checklist %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func errInvalidMode(mode model.Mode) error {
	return fmt.Errorf("unrecognized mode %q", string(mode))
}

func errMissingBackend(msg string) error {
	return errors.New(msg)
}

// classify converts an internal error into the public taxonomy. Errors
// already belonging to the taxonomy pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		invalidName *InvalidNameError
		notFound    *ChecklistNotFoundError
		itemMissing *ItemNotFoundError
		unavailable *ChecklistUnavailableError
		apiErr      *APIError
	)
	switch {
	case errors.As(err, &invalidName),
		errors.As(err, &notFound),
		errors.As(err, &itemMissing),
		errors.As(err, &unavailable),
		errors.As(err, &apiErr),
		errors.Is(err, ErrEmptyTitle):
		return err
	}

	var remote *api.Error
	if errors.As(err, &remote) {
		return &APIError{Status: remote.Status, Message: remote.Message, Err: err}
	}

	return &OpError{Op: op, Err: err}
}
