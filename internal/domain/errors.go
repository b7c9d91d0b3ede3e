package domain

import (
	"errors"
	"fmt"
)

// ErrNotFitted is returned when a model is asked to transform or predict
// before it has been fitted. Callers should surface this as "needs
// calibration" rather than substituting a default score.
var ErrNotFitted = errors.New("model is not fitted")

// InsufficientDataError is returned when a fit is attempted with too few
// usable samples or zero feature dimensions. No model artifact is produced.
type InsufficientDataError struct {
	Samples  int
	Features int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data to fit model: %d samples, %d features", e.Samples, e.Features)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

// ExtractionError is returned when feature extraction fails for a single
// photo. Batch callers drop the photo and continue.
type ExtractionError struct {
	PhotoID string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting features from photo [%s]: %v", e.PhotoID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// InvalidFeedbackKindError is returned when a feedback event carries an
// unknown kind. The event is rejected; the window is left untouched.
type InvalidFeedbackKindError struct {
	Kind string
}

func (e *InvalidFeedbackKindError) Error() string {
	return fmt.Sprintf("invalid feedback kind [%s]", e.Kind)
}

// ModelVersionError is returned when a stored preference model artifact
// cannot be used: its serialization format or extractor version no longer
// matches the running service. The user must be recalibrated.
type ModelVersionError struct {
	Reason string
}

func (e *ModelVersionError) Error() string {
	return "preference model must be recalibrated: " + e.Reason
}
