package response

import (
	"errors"
	"net/http"

	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/bizzpass/crm-backend-go/internal/domain/overtime"
	"github.com/bizzpass/crm-backend-go/internal/domain/payroll"
	"github.com/bizzpass/crm-backend-go/internal/domain/staff"
	"github.com/bizzpass/crm-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrSettingsNotConfigured):
		BadRequest(w, "Payroll settings not configured", nil)
	case errors.Is(err, payroll.ErrComponentNotFound):
		NotFound(w, "Salary component not found")
	case errors.Is(err, payroll.ErrComponentNameExists):
		Conflict(w, "Salary component name already exists")
	case errors.Is(err, payroll.ErrModalNotFound):
		NotFound(w, "Salary modal not found")
	case errors.Is(err, payroll.ErrModalNameExists):
		Conflict(w, "Salary modal name already exists")
	case errors.Is(err, payroll.ErrStructureNotFound):
		NotFound(w, "Salary structure not found")
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "Payroll run already exists for this period")
	case errors.Is(err, payroll.ErrRunNotCalculable):
		BadRequest(w, "Payroll run cannot be calculated in its current status", nil)
	case errors.Is(err, payroll.ErrRunNotApprovable):
		BadRequest(w, "Payroll run is not in calculated status", nil)
	case errors.Is(err, payroll.ErrTransactionNotFound):
		NotFound(w, "Payroll transaction not found")
	case errors.Is(err, payroll.ErrNoTransactionFields):
		BadRequest(w, "No fields to update", nil)
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Grace domain errors
	case errors.Is(err, grace.ErrFineModalNotFound):
		NotFound(w, "Fine modal not found")
	case errors.Is(err, grace.ErrFineModalNameExists):
		Conflict(w, "Fine modal name already exists")
	case errors.Is(err, grace.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Overtime domain errors
	case errors.Is(err, overtime.ErrTemplateNotFound):
		NotFound(w, "Overtime template not found")
	case errors.Is(err, overtime.ErrTemplateNameExists):
		Conflict(w, "Overtime template name already exists")

	// Staff domain errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff member not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
