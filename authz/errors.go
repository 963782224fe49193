package authz

import (
	"errors"
	"log"
	"net/http"

	"gatherings-server/utils"

	"github.com/kataras/iris/v12"
)

// Error taxonomy surfaced by the evaluator and lifecycle managers. Handlers
// translate these to HTTP once, via Respond.
var (
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("insufficient permissions")
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateMembership = errors.New("user is already a member of this group")
	ErrDuplicateInvitation = errors.New("a pending invitation already exists for this email")
	ErrAlreadyMember       = errors.New("invited user is already a member of this group")
	ErrInvalidState        = errors.New("invitation has already been responded to")
	ErrValidation          = errors.New("validation error")
)

func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateMembership),
		errors.Is(err, ErrDuplicateInvitation),
		errors.Is(err, ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateMembership):
		return "duplicate_membership"
	case errors.Is(err, ErrDuplicateInvitation):
		return "duplicate_invitation"
	case errors.Is(err, ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	}
	return "server_error"
}

// Respond writes the JSON error shape for err. Store failures are logged and
// reported as a generic internal error without leaking details.
func Respond(ctx iris.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		utils.JSONError(ctx, status, "server_error", "an internal error occurred")
		return
	}
	utils.JSONError(ctx, status, code(err), err.Error())
}
