package examrequest

import "errors"

var (
	ErrNotFound            = errors.New("exam request not found")
	ErrInvalidStatus       = errors.New("invalid exam request status")
	ErrInvalidPaymentType  = errors.New("invalid payment type")
	ErrInsuranceRequired   = errors.New("insurance is required for convenio payment")
	ErrInsuranceNotAllowed = errors.New("insurance must not be set for particular payment")
	ErrConductNotAllowed   = errors.New("conduct can only be set on an executed exam request")
	ErrInvalidConduct      = errors.New("invalid conduct")
	ErrPartnerRequired     = errors.New("owning partner is required")
	ErrStatusConflict      = errors.New("exam request was modified concurrently")
)
