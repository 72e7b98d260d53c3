package grace

import "errors"

var (
	ErrFineModalNotFound   = errors.New("fine modal not found")
	ErrFineModalNameExists = errors.New("fine modal name already exists")
	ErrEmployeeNotFound    = errors.New("employee not found for grace resolution")
)
