package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoRefreshToken is wrapped by the AuthenticationError returned when a
// 401 arrives and there is no refresh token to use.
var ErrNoRefreshToken = errors.New("api: no refresh token available")

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthenticationError means the session could not be authenticated, either
// because a 401 survived one refresh or the refresh itself failed.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// FieldError is one entry of a field-keyed error body.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is a 4xx response with a readable error body.
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *ValidationError) Error() string { return e.Message }

// ServerError is a 5xx response, or any error response whose body could
// not be read as an error message.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.StatusCode
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsAuth reports whether err is an AuthenticationError.
func IsAuth(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// errorFromResponse builds the typed error for a non-2xx response.
func errorFromResponse(op string, resp *Response) error {
	msg, fields, ok := decodeErrorBody(resp.Body)
	if !ok {
		return &ServerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s failed (%d: %s)", op, resp.StatusCode, resp.StatusText()),
		}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	return &ValidationError{Op: op, StatusCode: resp.StatusCode, Message: msg, Fields: fields}
}

// decodeErrorBody extracts a message from a DRF-style error body: a
// "detail" or "error" string, or an object of field -> message(s).
func decodeErrorBody(body []byte) (string, []FieldError, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return "", nil, false
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return "", nil, false
	}
	for _, key := range []string{"detail", "error"} {
		if raw, ok := probe[key]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s, nil, true
			}
		}
	}

	fields, err := orderedFields(body)
	if err != nil || len(fields) == 0 {
		return "", nil, false
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return strings.Join(parts, ", "), fields, true
}

// orderedFields walks the top-level object so fields keep server order.
func orderedFields(body []byte) ([]FieldError, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var out []FieldError
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, FieldError{Field: key, Message: fieldMessage(raw)})
	}
	return out, nil
}

func fieldMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fieldMessage(item))
		}
		return strings.Join(parts, " ")
	}
	return string(bytes.TrimSpace(raw))
}
