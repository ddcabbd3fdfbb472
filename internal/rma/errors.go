package rma

import "errors"

var (
	// ErrNotFound is returned when an RMA id does not resolve.
	ErrNotFound = errors.New("RMA record not found")

	// ErrDiagnosisRequired is returned when process is called without a diagnosis.
	ErrDiagnosisRequired = errors.New("Diagnosis is required to process RMA")

	// ErrSolutionRequired is returned when complete is called without a solution.
	ErrSolutionRequired = errors.New("Solution is required to complete RMA")

	// ErrReasonRequired is returned when fail is called without a reason.
	ErrReasonRequired = errors.New("Failure reason is required")

	// ErrAlreadyInStock is returned when a returned item is already in the store's stock.
	ErrAlreadyInStock = errors.New("Item already exists in store inventory")

	// ErrOpenRMAExists is returned when a store intake targets a device that
	// already has a non-terminal RMA.
	ErrOpenRMAExists = errors.New("An open RMA already exists for this item")

	// ErrAdminOnly is returned when a non-admin caller attempts a deletion.
	ErrAdminOnly = errors.New("Only admin users can delete RMA records")

	// ErrRecordNotFound is returned when a store intake references an unknown device.
	ErrRecordNotFound = errors.New("Device not found with the provided record id")

	// ErrUpdateRestricted is returned when repair fields are patched outside processing.
	ErrUpdateRestricted = errors.New("Can only update diagnosis and solution during processing")
)

// InvalidTransitionError describes an event that is not legal from the
// current state. The web layer surfaces it as a validation failure with
// the attempted event and origin state as machine-checkable details.
type InvalidTransitionError struct {
	Event   string
	From    string
	Message string
}

func (e *InvalidTransitionError) Error() string {
	return e.Message
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
