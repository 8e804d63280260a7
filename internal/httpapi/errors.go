package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"household-planner/internal/service"
)

var errInvalidRequestBody = errors.New("invalid request body")

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

// fromServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is a 500 and its text is not shown to the caller.
func fromServiceError(err error) apiError {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return newAPIError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnknownItem),
		errors.Is(err, service.ErrInsufficientStars):
		return newBadRequestError(err.Error())
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrLastMember):
		return newAPIError(http.StatusConflict, err.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	apiErr := fromServiceError(err)
	event := h.logger.Warn()
	if apiErr.Code >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).
		Str("path", c.FullPath()).
		Msg(msg)
	abort(c, apiErr)
}
