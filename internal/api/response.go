package api

import "fmt"

// Response is the uniform result of every endpoint. On failure Data holds the
// endpoint's empty value and Message explains what went wrong.
type Response[T any] struct {
	Data       T
	Message    string
	StatusCode int
	Success    bool
}

func failed[T any](status int, msg string) Response[T] {
	var zero T
	return Response[T]{Data: zero, Message: msg, StatusCode: status}
}

// Err converts a failed response into an error for callers that prefer one,
// such as the CLI commands.
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	return &StatusError{StatusCode: r.StatusCode, Message: r.Message}
}

type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}
