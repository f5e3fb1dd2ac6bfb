// Package gateway is the abstracted client for external generation
// capabilities: text completion and media jobs. It owns timeouts, bounded
// retries, and the error taxonomy callers branch on.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/kingrea/storyforge/internal/config"
)

// Kind distinguishes the generation capabilities.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ErrorKind classifies gateway failures. Connection failures are retried a
// bounded number of times; timeouts and remote errors are surfaced as is.
type ErrorKind string

const (
	ErrTimeout    ErrorKind = "timeout"
	ErrConnection ErrorKind = "connection"
	ErrRemote     ErrorKind = "remote_error"
)

// Error is the typed failure every gateway call returns.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a gateway timeout.
func IsTimeout(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == ErrTimeout
}

// IsRemote reports whether err is a failure reported by the remote system.
func IsRemote(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == ErrRemote
}

// classify maps a transport error onto the taxonomy. Deadline expiry counts
// as a timeout; net-level failures as connection trouble; anything else is
// attributed to the remote system.
func classify(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: ErrTimeout, Op: op, Err: err}
		}
		return &Error{Kind: ErrConnection, Op: op, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: ErrConnection, Op: op, Err: err}
	}
	return &Error{Kind: ErrRemote, Op: op, Err: err}
}

// maxConnectionRetries bounds the caller-visible retry count on transient
// connection failure. Remote-reported failures are never retried.
const maxConnectionRetries = 2

// Gateway bundles the two capability clients.
type Gateway struct {
	Text  *TextClient
	Media *MediaClient
}

// New wires both clients from the run configuration.
func New(cfg config.Config) (*Gateway, error) {
	text, err := NewTextClient(cfg)
	if err != nil {
		return nil, err
	}
	media, err := NewMediaClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Gateway{Text: text, Media: media}, nil
}
