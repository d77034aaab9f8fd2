package types

import (
	"net/http"

	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// FromAppError converts err into the response envelope error. Internal
// failures keep their cause out of the message.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	ae, ok := appErr.As(err)
	if !ok {
		return &APIError{Code: string(appErr.CodeInternal), Message: "internal error"}
	}
	out := &APIError{Code: string(ae.Code), Message: ae.Message, Meta: ae.Meta}
	if ae.Code == appErr.CodeInternal || ae.Code == appErr.CodeUnknown {
		out.Code = string(appErr.CodeInternal)
		out.Meta = nil
	}
	return out
}

// StatusFor maps the code carried by err to an HTTP status.
func StatusFor(err error) int {
	switch appErr.CodeOf(err) {
	case appErr.CodeInvalid,
		appErr.CodeValidationFailed,
		appErr.CodeBudgetMismatch,
		appErr.CodeCeilingExceeded,
		appErr.CodeCriterionOutOfRange,
		appErr.CodeMissingRejectionReason,
		appErr.CodeIncompleteEvaluation,
		appErr.CodeNotEligibleForHabilitacao:
		return http.StatusUnprocessableEntity
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeConflict, appErr.CodeAlreadyExists, appErr.CodeAlreadyStarted, appErr.CodeInvalidTransition:
		return http.StatusConflict
	case appErr.CodeUnauthorized:
		return http.StatusUnauthorized
	case appErr.CodeForbidden:
		return http.StatusForbidden
	case appErr.CodeUnavailable:
		return http.StatusServiceUnavailable
	case appErr.CodeDeadline:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
