package payrunerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPayRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay run not found",
		http.StatusNotFound,
	)
	ErrItemNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay run item not found",
		http.StatusNotFound,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before or equal period_end",
		http.StatusBadRequest,
	)
	ErrPeriodOverlap = apperror.New(
		apperror.CodeConflict,
		"a pay run already exists for an overlapping period",
		http.StatusConflict,
	)
	ErrNoActiveEmployees = apperror.New(
		apperror.CodeInvalidInput,
		"no active employees for this company",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid pay run status transition",
		http.StatusConflict,
	)
	ErrCannotCancel = apperror.New(
		apperror.CodeInvalidState,
		"pay run can no longer be cancelled",
		http.StatusConflict,
	)
	ErrApprovalPending = apperror.New(
		apperror.CodeInvalidState,
		"approval request has not been approved yet",
		http.StatusConflict,
	)
	ErrItemNotProcessable = apperror.New(
		apperror.CodeInvalidState,
		"pay run item is not in a processable state",
		http.StatusConflict,
	)
	ErrItemAlreadyExcluded = apperror.New(
		apperror.CodeInvalidState,
		"pay run item is already excluded",
		http.StatusConflict,
	)
	ErrExclusionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"exclusion reason is required",
		http.StatusBadRequest,
	)
)
