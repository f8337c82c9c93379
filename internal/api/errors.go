package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotJSON is returned when a GET answers 2xx without a JSON body.
	ErrNotJSON = errors.New("response is not JSON")

	// ErrDeleteFailed is returned for any non-2xx delete response.
	ErrDeleteFailed = errors.New("failed to delete transaction")

	// ErrUnreachable covers transport and decode failures of the ask-AI
	// call. Its text is shown to the user as is.
	ErrUnreachable = errors.New("Network error or server not reachable")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
}

// CreateError is returned when the backend rejects a new transaction.
type CreateError struct {
	StatusCode int
	Message    string
}

func (e *CreateError) Error() string {
	return e.Message
}

// AIError carries the error text returned by the ask-AI endpoint.
type AIError struct {
	StatusCode int
	Message    string
}

func (e *AIError) Error() string {
	return e.Message
}

const (
	defaultCreateMessage = "failed to create transaction"
	defaultAIMessage     = "Something went wrong"
)
