package workflowerrors

import (
	"net/http"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrStepNotFound = apperror.New(
		apperror.CodeNotFound,
		"workflow step not found",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"operation not permitted from the current workflow state",
		http.StatusUnprocessableEntity,
	)
	ErrStepNotPending = apperror.New(
		apperror.CodeInvalidState,
		"workflow step has already been actioned",
		http.StatusUnprocessableEntity,
	)
	ErrStepOutOfOrder = apperror.New(
		apperror.CodeInvalidState,
		"an earlier workflow step is still pending",
		http.StatusUnprocessableEntity,
	)
	ErrNotAssignedApprover = apperror.New(
		apperror.CodeForbidden,
		"actor is not the assigned approver for this step",
		http.StatusForbidden,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"actor is not the owner of this leave request",
		http.StatusForbidden,
	)
	ErrApproversRequired = apperror.New(
		apperror.CodeInvalidInput,
		"at least one approver is required",
		http.StatusBadRequest,
	)
)
