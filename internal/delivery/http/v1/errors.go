package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/services"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
	errInvalidQuery            = errors.New("invalid query parameter")
	errDeadlineInPast          = errors.New("deadline is in the past")
	errInvalidDeadline         = errors.New("deadline must be YYYY-MM-DD or RFC 3339")
	errGeneratorDisabled       = errors.New("task generation is not configured")
	errUnparseableSuggestions  = errors.New("could not read the suggestions, try again")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

func newUnprocessableError(message string) apiError {
	return newAPIError(http.StatusUnprocessableEntity, message)
}

// newServiceError maps the sentinel errors of the services onto
// responses. Anything unknown is an internal error.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrLapNotFound),
		errors.Is(err, services.ErrWorkspaceNotFound):
		return newNotFoundError(err.Error())
	case errors.Is(err, services.ErrWorkspaceAlreadyExists),
		errors.Is(err, services.ErrUserAlreadyExists):
		return newConflictError(err.Error())
	case errors.Is(err, services.ErrInvalidDuration):
		return newBadRequestError(err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUserPasswordMismatch),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrSessionExpired),
		errors.Is(err, services.ErrAuthCodeNotFound),
		errors.Is(err, services.ErrAuthCodeExpired):
		return newUnauthorizedError(err.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
