package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/SAP-F-2025/course-service/internal/errors"
)

const (
	codeValidation     = "validation_failed"
	codeSessionExpired = "session_expired"

	msgNoConnection = "No internet connection"
	msgUnknown      = "An unknown error occurred"
	msgExpired      = "Your session has expired, please sign in again"
)

// ErrSessionExpired is returned when the server rejected an expired token.
// The session and cache are already cleared when callers see it.
var ErrSessionExpired = errors.New("session expired")

// ValidationErrors are field-level rejections; Field holds the dotted path,
// e.g. "form_response_data.0.response", so forms can show them inline.
type ValidationErrors = apperrors.ValidationErrors

// NetworkError is a transport failure: the server was never heard from.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a structured error payload returned by the server.
type APIError struct {
	Status int
	Detail string
	Code   string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error %d", e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

type errorBody struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
	Code    string          `json:"code"`
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		// not one of ours, e.g. a proxy page
		return &APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(data))}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && body.Code == codeSessionExpired:
		return ErrSessionExpired
	case resp.StatusCode == http.StatusBadRequest && body.Code == codeValidation:
		var details ValidationErrors
		if err := json.Unmarshal(body.Details, &details); err == nil && len(details) > 0 {
			return details
		}
	}

	return &APIError{Status: resp.StatusCode, Detail: body.Message, Code: body.Code}
}

// UserMessage extracts a message suitable for a notification. Validation
// errors belong next to their fields and are summarised only.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var netErr *NetworkError
	var apiErr *APIError
	var valErrs ValidationErrors
	switch {
	case errors.As(err, &netErr):
		return msgNoConnection
	case errors.Is(err, ErrSessionExpired):
		return msgExpired
	case errors.As(err, &valErrs):
		if len(valErrs) == 1 {
			return fmt.Sprintf("%s %s", valErrs[0].Field, valErrs[0].Message)
		}
		return fmt.Sprintf("%d fields need attention", len(valErrs))
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	default:
		return msgUnknown
	}
}
