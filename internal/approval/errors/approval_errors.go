package approvalerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval request not found",
		http.StatusNotFound,
	)
	ErrRequestAlreadyResolved = apperror.New(
		apperror.CodeInvalidState,
		"approval request is already approved or rejected",
		http.StatusBadRequest,
	)
	ErrInsufficientRoleLevel = apperror.New(
		apperror.CodeForbidden,
		"actor role level is below the requirement for this approval step",
		http.StatusForbidden,
	)
	ErrApprovalConflict = apperror.New(
		apperror.CodeConflict,
		"approval request was modified concurrently, reload and retry",
		http.StatusConflict,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be APPROVE or REJECT",
		http.StatusBadRequest,
	)
	ErrChainHasNoSteps = apperror.New(
		apperror.CodeConfigurationError,
		"approval chain has no steps configured",
		http.StatusUnprocessableEntity,
	)
)
