package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// GenericMessage is shown when neither the server nor the error has
// anything better to say.
const GenericMessage = "An error occurred"

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string

	// Detail is the server-supplied message (`detail`, else `message`).
	Detail string

	// Fields holds per-field validation messages, when the body has them.
	Fields map[string][]string

	Body []byte
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, strings.Join(e.Fields[k], " "))
		}
	}
	return b.String()
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// newAPIError decodes what it can from a DRF-style error body.
func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Method: method, Path: path, Body: body}

	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return e
	}
	for _, key := range []string{"detail", "message"} {
		var s string
		if v, ok := raw[key]; ok && json.Unmarshal(v, &s) == nil && s != "" {
			e.Detail = s
			break
		}
	}
	for k, v := range raw {
		if k == "detail" || k == "message" {
			continue
		}
		var msgs []string
		if json.Unmarshal(v, &msgs) == nil && len(msgs) > 0 {
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[k] = msgs
		}
	}
	return e
}

// UserMessage picks the text shown to the user for err: the server message
// for API errors (or GenericMessage when the server gave none), otherwise
// the error's own message.
func UserMessage(err error) string {
	if err == nil {
		return GenericMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return GenericMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericMessage
}

// silent reports errors the user caused on purpose.
func silent(err error) bool {
	return errors.Is(err, context.Canceled)
}
