package careteam

import "errors"

var (
	ErrDuplicateAssignment = errors.New("patient is already assigned to this doctor")
	// ErrNotAssigned is returned both when the patient is not assigned to the
	// doctor and when the patient does not exist.
	ErrNotAssigned = errors.New("patient not found or not assigned")
)
