package paysliperrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
	ErrPayRunNotProcessing = apperror.New(
		apperror.CodeInvalidState,
		"payslips can only be generated for a run in PROCESSING",
		http.StatusConflict,
	)
	ErrFileNotGenerated = apperror.New(
		apperror.CodeNotFound,
		"payslip file is not generated yet",
		http.StatusNotFound,
	)
)
