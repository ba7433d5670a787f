package lightning

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrClientUnavailable means no usable connection exists, either because no
// credentials are set or because the last connection build failed. There is
// nothing to retry against.
var ErrClientUnavailable = errors.New("no lightning client available")

type ErrorKind int

const (
	// KindTransport: the call failed on its way to or from the node.
	// Retryable for reads.
	KindTransport ErrorKind = 0

	// KindRemoteRejection: the node received the request and explicitly
	// rejected it. Never retryable.
	KindRemoteRejection ErrorKind = 1

	// KindLocalValidation: malformed local input, nothing was sent to the
	// network.
	KindLocalValidation ErrorKind = 2

	// KindParse: the node's response could not be interpreted. Fatal to the
	// single call only.
	KindParse ErrorKind = 3
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport failure"
	case KindRemoteRejection:
		return "remote rejection"
	case KindLocalValidation:
		return "local validation failure"
	case KindParse:
		return "parse failure"
	}

	return "unknown"
}

type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Errorf(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, a...)}
}

// KindOf returns the taxonomy kind of err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

// Retryable reports whether a failed call may be reissued. Only transport
// failures qualify; everything else either cannot succeed on a second
// attempt or must not be resubmitted blindly.
func Retryable(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindTransport
}

// TranslateRPCError maps a grpc call error onto the local taxonomy. The
// node rejects invalid requests with application-level codes (mostly
// Unknown); everything that smells like the transport layer is marked
// retryable.
func TranslateRPCError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTransport, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return NewError(KindTransport, err)
	}

	switch st.Code() {
	case codes.Unavailable,
		codes.DeadlineExceeded,
		codes.Canceled,
		codes.Aborted,
		codes.ResourceExhausted,
		codes.Internal:
		return NewError(KindTransport, err)
	case codes.Unimplemented:
		return NewError(KindParse, err)
	default:
		return NewError(KindRemoteRejection, err)
	}
}
