package handler

import (
	"errors"
	"net/http"

	"portfee/internal/calculation"
	"portfee/internal/model"
	"portfee/internal/service"
	"portfee/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var validation *model.ValidationError
	var invalidInput *calculation.InvalidInputError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrDuplicateStart),
		errors.Is(err, service.ErrFormNotEditable):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidBrackets),
		errors.As(err, &validation),
		errors.As(err, &invalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// pathID parses the :id parameter, answering 400 when it is not a uuid.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query parameter.
func queryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "Invalid "+key)
		return nil, false
	}
	return &id, true
}

func respond(c *gin.Context, status int, data any, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, response.Success(status, data))
}
