package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes carried in ErrorResponse.Error.Code.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeClient       = "CLIENT_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeDuplicate    = "DUPLICATE_DOCUMENT"
	CodeUnresolved   = "UNRESOLVED_REFERENCE"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeServer       = "SERVER_ERROR"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}}
}

func send(c echo.Context, status int, code, message string, details map[string]string) error {
	return c.JSON(status, CreateErrorResponse(code, message, details))
}

// SendValidationError reports one offending input field.
func SendValidationError(c echo.Context, field, message string) error {
	return send(c, http.StatusBadRequest, CodeValidation, "Validation failed", map[string]string{field: message})
}

func SendClientError(c echo.Context, message string) error {
	return send(c, http.StatusBadRequest, CodeClient, message, nil)
}

// SendConflictError reports a business key already held by an active document.
func SendConflictError(c echo.Context, message string, details map[string]string) error {
	return send(c, http.StatusConflict, CodeDuplicate, message, details)
}

// SendUnresolvedReferenceError reports a directory code with no active entry.
// details maps the input field to the code that failed.
func SendUnresolvedReferenceError(c echo.Context, field, code string) error {
	return send(c, http.StatusUnprocessableEntity, CodeUnresolved, "Unknown directory code", map[string]string{field: code})
}

// SendServerError never includes the underlying cause; callers log it.
func SendServerError(c echo.Context, message string) error {
	return send(c, http.StatusInternalServerError, CodeServer, message, nil)
}

func SendNotFoundError(c echo.Context, resource string) error {
	return send(c, http.StatusNotFound, CodeNotFound, resource+" not found", nil)
}

func SendUnauthorizedError(c echo.Context) error {
	return send(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access", nil)
}
