// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed API call.
type Kind int

// Failure kinds. Callers branch on these instead of transport types.
const (
	KindHTTP Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindServer
	KindNetwork
	KindRequest
)

// String returns the metric/log label of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server_error"
	case KindNetwork:
		return "network_error"
	case KindRequest:
		return "request_error"
	default:
		return "http_error"
	}
}

// Default user-facing messages, used when the API does not supply a detail.
const (
	msgUnauthorized = "Your session has expired. Please sign in again."
	msgForbidden    = "You do not have permission to do that."
	msgNotFound     = "The requested resource was not found."
	msgServer       = "Something went wrong on our side. Please try again later."
	msgNetwork      = "We could not reach the Inner Circle. Check your connection and try again."
	msgRequest      = "The request could not be prepared."
	msgHTTP         = "The request failed."
)

// Error is the single error type returned by Client methods.
type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Endpoint string
	// Data is the raw response body, kept for callers that need more than the message.
	Data []byte
	Err  error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api %s: %s (%d): %s", e.Endpoint, e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("api %s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("api %s: %s: %s", e.Endpoint, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, and false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// StatusOf returns the HTTP status of a failed call, or 0 when no response
// was received.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the user-facing message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Optional turns a NotFound failure into an explicit absent result.
// Any other error is returned unchanged.
func Optional[T any](v T, err error) (T, bool, error) {
	if err == nil {
		return v, true, nil
	}
	var zero T
	if IsKind(err, KindNotFound) {
		return zero, false, nil
	}
	return zero, false, err
}

// kindForStatus maps a non-2xx status code to a failure kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusInternalServerError:
		return KindServer
	default:
		return KindHTTP
	}
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindUnauthorized:
		return msgUnauthorized
	case KindForbidden:
		return msgForbidden
	case KindNotFound:
		return msgNotFound
	case KindServer:
		return msgServer
	case KindNetwork:
		return msgNetwork
	case KindRequest:
		return msgRequest
	default:
		return msgHTTP
	}
}

// detailMessage extracts the API's "detail" field. It is either a string or,
// for validation failures, a list of objects carrying "msg".
func detailMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(payload.Detail, &s) == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(payload.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// newStatusError builds the error for a non-2xx response.
func newStatusError(endpoint string, status int, body []byte) *Error {
	kind := kindForStatus(status)
	msg := detailMessage(body)
	if msg == "" {
		msg = defaultMessage(kind)
	}
	return &Error{Kind: kind, Status: status, Message: msg, Endpoint: endpoint, Data: body}
}
