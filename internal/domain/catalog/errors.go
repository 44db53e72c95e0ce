package catalog

import "errors"

var (
	ErrPartnerNotFound   = errors.New("partner not found")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrInsuranceNotFound = errors.New("insurance not found")
	ErrBatteryNotFound   = errors.New("battery not found")
	ErrUnitNotFound      = errors.New("unit not found")
)
