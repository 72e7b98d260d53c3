package payroll

import "errors"

var (
	ErrSettingsNotConfigured = errors.New("payroll settings not configured")
	ErrComponentNotFound     = errors.New("salary component not found")
	ErrComponentNameExists   = errors.New("salary component name already exists")
	ErrModalNotFound         = errors.New("salary modal not found")
	ErrModalNameExists       = errors.New("salary modal name already exists")
	ErrStructureNotFound     = errors.New("salary structure not found")
	ErrRunNotFound           = errors.New("payroll run not found")
	ErrRunAlreadyExists      = errors.New("payroll run already exists for this period")
	ErrRunNotCalculable      = errors.New("payroll run is not in a calculable state")
	ErrRunNotApprovable      = errors.New("payroll run is not in calculated state")
	ErrTransactionNotFound   = errors.New("payroll transaction not found")
	ErrNoTransactionFields   = errors.New("no transaction fields to update")
	ErrEmployeeNotFound      = errors.New("employee not found")
)
