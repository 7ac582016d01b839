package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected   = errors.New("protocol: host is not connected")
	ErrInvalidRequest = errors.New("protocol: invalid request")
	ErrInvalidOption  = errors.New("protocol: invalid file option")
)

// ConnectionError reports an operation attempted without a usable socket.
type ConnectionError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("protocol: %s %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("protocol: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// MissingFrameError reports a response shorter than its endpoint contract.
// It usually means the agent speaks a different protocol version.
type MissingFrameError struct {
	Field string
	Order uint8
}

func (e *MissingFrameError) Error() string {
	return fmt.Sprintf("protocol: missing frame %q at position %d", e.Field, e.Order)
}

// AgentError carries a failure reported by the remote agent, verbatim.
type AgentError struct {
	Message string
}

func (e *AgentError) Error() string {
	return "agent: " + e.Message
}

// ParseError reports a frame that arrived but could not be interpreted.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("protocol: parse %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvariantViolation is the panic value raised when a response header is
// neither "Ok" nor "Err".
type InvariantViolation struct {
	Header string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("protocol: invariant violated: unexpected response header %q", v.Header)
}

// IsAgentError reports whether err is, or wraps, an AgentError.
func IsAgentError(err error) bool {
	var agentErr *AgentError
	return errors.As(err, &agentErr)
}
