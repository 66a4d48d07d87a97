// Package response writes the API's {data, error} envelope.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/designlib/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is the error half of the envelope.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success wraps data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail builds an error envelope.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes resp with status.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Created writes a 201.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Success(data))
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// MethodNotAllowed writes a 405.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail(
		"METHOD_NOT_ALLOWED",
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// Conflict writes a 409.
func Conflict(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusConflict, Fail("CONFLICT", message, details))
}

// TooLarge writes a 413.
func TooLarge(w http.ResponseWriter, details string) {
	JSON(w, http.StatusRequestEntityTooLarge, Fail("TOO_LARGE", "Request body too large", details))
}

// InternalError writes a 500 without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// BadGateway writes a 502 for remote mirror failures.
func BadGateway(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadGateway, Fail("REMOTE_ERROR", "Remote mirror failed", message))
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail("SERVICE_UNAVAILABLE", "Service unavailable", message))
}

// ErrorFromType maps catalog errors to HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	switch {
	case errors.IsInvalidName(err), errors.IsValidationError(err):
		BadRequest(w, err.Error(), "")
	case errors.IsNotFound(err):
		NotFound(w, err.Error(), "")
	case errors.IsConflict(err):
		Conflict(w, err.Error(), "")
	case errors.IsRemote(err):
		BadGateway(w, err.Error())
	case errors.IsCorruptLedger(err):
		ServiceUnavailable(w, err.Error())
	default:
		InternalError(w, err)
	}
}
