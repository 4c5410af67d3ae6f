package taxerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrTaxTableNotFound = apperror.New(
		apperror.CodeConfigurationError,
		"no active tax table for this company, year and jurisdiction",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidTaxTable = apperror.New(
		apperror.CodeConfigurationError,
		"tax table bands are not ordered and contiguous",
		http.StatusUnprocessableEntity,
	)
)
