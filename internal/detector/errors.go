package detector

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoModelLoaded is returned when scoring or a model-info request is
// attempted with no active classifier. It is an expected condition, not
// a fault.
var ErrNoModelLoaded = errors.New("no model loaded")

// ValidationError reports every structural violation found in an input
// table, never just the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid data: " + strings.Join(e.Violations, "; ")
}

// SchemaMismatchError signals that the engineered feature columns
// disagree with the schema the active model was trained on. Scoring
// fails fast rather than silently misaligning columns.
type SchemaMismatchError struct {
	Expected []string
	Got      []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch: model expects %d features [%s], input produced %d [%s]",
		len(e.Expected), strings.Join(e.Expected, ","),
		len(e.Got), strings.Join(e.Got, ","))
}

// TrainingError wraps a failure of the underlying fit step. The training
// sequence aborts without mutating the persisted model.
type TrainingError struct {
	Err error
}

func (e *TrainingError) Error() string { return "training failed: " + e.Err.Error() }
func (e *TrainingError) Unwrap() error { return e.Err }

// PersistenceError wraps a model save or load I/O failure. A save
// failure leaves the in-memory model usable but unpersisted; a load
// failure leaves the system in the no-model-loaded state.
type PersistenceError struct {
	Op  string // "save" or "load"
	Err error
}

func (e *PersistenceError) Error() string {
	return "model " + e.Op + " failed: " + e.Err.Error()
}
func (e *PersistenceError) Unwrap() error { return e.Err }
