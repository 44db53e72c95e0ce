package checkuprequest

import "errors"

var (
	ErrNotFound       = errors.New("checkup request not found")
	ErrInvalidStatus  = errors.New("invalid checkup request status")
	ErrUnitRequired   = errors.New("destination unit is required to forward a checkup request")
	ErrEmptyExamList  = errors.New("checkup request needs at least one exam")
	ErrStatusConflict = errors.New("checkup request was modified concurrently")
)
