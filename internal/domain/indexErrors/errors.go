// Package indexErrors is the error taxonomy shared by the index core and the RPC boundary.
// Every error carries a kind, the offending document id when there is one, and the underlying cause.
package indexErrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNotFound       Kind = "NOT_FOUND"
	KindConflict       Kind = "CONFLICT"
	KindEmptyIndex     Kind = "EMPTY_INDEX"
	KindGateway        Kind = "GATEWAY"
	KindPersistence    Kind = "PERSISTENCE"
	KindPartialFailure Kind = "PARTIAL_FAILURE"
	KindInvalidInput   Kind = "INVALID_INPUT"
	KindTimeout        Kind = "TIMEOUT"
)

// Sentinels for errors.Is. They match any IndexError of the same kind.
var (
	ErrNotFound       = &IndexError{Kind: KindNotFound}
	ErrConflict       = &IndexError{Kind: KindConflict}
	ErrEmptyIndex     = &IndexError{Kind: KindEmptyIndex}
	ErrGateway        = &IndexError{Kind: KindGateway}
	ErrPersistence    = &IndexError{Kind: KindPersistence}
	ErrPartialFailure = &IndexError{Kind: KindPartialFailure}
	ErrInvalidInput   = &IndexError{Kind: KindInvalidInput}
	ErrTimeout        = &IndexError{Kind: KindTimeout}
)

type IndexError struct {
	Kind      Kind
	Op        string
	Id        string
	Message   string
	Retryable bool
	Cause     error
}

func (e *IndexError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Id != "" {
		fmt.Fprintf(&b, " (id %q)", e.Id)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *IndexError) Unwrap() error { return e.Cause }

// Is matches on kind only, so errors.Is(err, ErrNotFound) works for any not-found error.
func (e *IndexError) Is(target error) bool {
	t, ok := target.(*IndexError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NotFound(op, id string) *IndexError {
	return &IndexError{Kind: KindNotFound, Op: op, Id: id, Message: "document does not exist"}
}

func Conflict(op, id string) *IndexError {
	return &IndexError{Kind: KindConflict, Op: op, Id: id, Message: "document already exists; set overwrite to replace it"}
}

func EmptyIndex(op string) *IndexError {
	return &IndexError{Kind: KindEmptyIndex, Op: op, Message: "the index holds no passages"}
}

func InvalidInput(op, id, message string) *IndexError {
	return &IndexError{Kind: KindInvalidInput, Op: op, Id: id, Message: message}
}

// Gateway wraps an embedding or synthesis backend failure. Deadline failures are always retryable.
func Gateway(op, id string, retryable bool, cause error) *IndexError {
	if errors.Is(cause, context.DeadlineExceeded) {
		retryable = true
	}
	return &IndexError{Kind: KindGateway, Op: op, Id: id, Retryable: retryable, Cause: cause}
}

func Persistence(op, id string, cause error) *IndexError {
	return &IndexError{Kind: KindPersistence, Op: op, Id: id, Retryable: true, Cause: cause}
}

func PartialFailure(op, id, message string, cause error) *IndexError {
	return &IndexError{Kind: KindPartialFailure, Op: op, Id: id, Message: message, Cause: cause}
}

func Timeout(op, id string, cause error) *IndexError {
	return &IndexError{Kind: KindTimeout, Op: op, Id: id, Retryable: true, Message: "timed out waiting for the index lock", Cause: cause}
}

// KindOf returns the kind of the first IndexError in err's chain, or "" for foreign errors.
func KindOf(err error) Kind {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsRetryable reports whether the caller may retry the operation unchanged.
func IsRetryable(err error) bool {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Retryable
	}
	return false
}

// IdOf returns the document id attached to err, if any.
func IdOf(err error) string {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Id
	}
	return ""
}
