package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
)

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
	Data    any     `json:"data"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Respond wraps data in the success envelope. An empty message is
// rendered as null.
func Respond(w http.ResponseWriter, status int, message string, data any) {
	env := Envelope{Success: true, Data: data}
	if message != "" {
		env.Message = &message
	}
	JSON(w, status, env)
}

// DecodeJSON parses the request body into v, rejecting unknown fields.
// Failures are reported as unprocessable-entity errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", apperr.ErrUnprocessable)
	}

	return nil
}

// WriteError translates an error into its HTTP status and fixed
// message, rendered through the failure envelope. Unrecognized errors
// surface as 500 with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status, message := http.StatusInternalServerError, "Server error"

	var verr validation.Errors
	switch {
	case errors.As(err, &verr):
		status, message = http.StatusUnprocessableEntity, verr.Error()
	case errors.Is(err, apperr.ErrUserAlreadyExists):
		status, message = http.StatusBadRequest, "User with this email already exists"
	case errors.Is(err, apperr.ErrUserNotFound):
		status, message = http.StatusNotFound, "User not found"
	case errors.Is(err, apperr.ErrAuthFailed):
		status, message = http.StatusUnauthorized, "Incorrect email or password"
	case errors.Is(err, apperr.ErrTokenExpired):
		status, message = http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, apperr.ErrTokenInvalid):
		status, message = http.StatusUnauthorized, "Token is invalid"
	case errors.Is(err, apperr.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperr.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperr.ErrUnprocessable):
		status, message = http.StatusUnprocessableEntity, err.Error()
	}

	JSON(w, status, Envelope{Success: false, Message: &message})
}
