package balanceerrors

import (
	"net/http"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/shared/apperror"
)

var (
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"requested quantity exceeds available balance",
		http.StatusConflict,
	)
	ErrInvalidBalanceState = apperror.New(
		apperror.CodeInvalidState,
		"requested quantity exceeds held balance",
		http.StatusUnprocessableEntity,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrBalanceAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"leave balance already exists for this employee and leave type",
		http.StatusConflict,
	)
	ErrInvalidQuantity = apperror.New(
		apperror.CodeInvalidInput,
		"quantity must be a positive multiple of 0.5",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidBalanceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid balance id",
		http.StatusBadRequest,
	)
)
