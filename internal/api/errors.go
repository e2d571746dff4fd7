package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// genericFailure is reported when the backend gives no usable message.
const genericFailure = "Request failed"

var (
	// ErrUnauthorized matches every *UnauthorizedError.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrInvalidStatus is returned for section updates other than
	// approved/rejected; no request is sent.
	ErrInvalidStatus = errors.New("api: section status must be approved or rejected")
)

// UnauthorizedError is returned after a 401. By the time the caller sees it
// the stored credential is gone and the unauthorized handlers have run.
type UnauthorizedError struct {
	Method string
	Path   string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("api: %s %s: unauthorized", e.Method, e.Path)
}

// Is lets errors.Is(err, ErrUnauthorized) match.
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// RequestError is any other non-2xx response.
type RequestError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// UserMessage turns an error from this package into the text shown to the
// admin.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	if errors.Is(err, ErrUnauthorized) {
		return "Session expired. Please log in again."
	}
	return err.Error()
}

// errorPayload covers {"detail": "..."}, {"detail": [{"msg": "..."}]} and
// {"message": "..."}.
type errorPayload struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func decodeErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return genericFailure
	}
	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return genericFailure
	}
	if msg := detailMessage(payload.Detail); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return genericFailure
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		for _, item := range items {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				return msg
			}
		}
	}
	return ""
}
