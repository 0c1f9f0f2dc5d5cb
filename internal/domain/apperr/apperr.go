// Package apperr defines the error-kind taxonomy the HTTP layer dispatches
// on, grounded on the teacher's respond.AppError pattern.
package apperr

import "fmt"

// Kind is one of the error kinds in spec.md §7. It determines HTTP status
// mapping in the handler layer and whether the error is client-facing.
type Kind int

const (
	// KindBadRequest is a malformed or unusable query URL.
	KindBadRequest Kind = iota
	// KindNotFound means the crawl produced no HTTP response at all.
	KindNotFound
	// KindStoreError is a KV Store Adapter failure. Never reaches the
	// client directly; callers log it and treat the operation as an
	// empty read or a skipped write.
	KindStoreError
	// KindDirectoryError is a Directory Client failure. Callers log it
	// and treat it as an empty result list.
	KindDirectoryError
	// KindCrawlerError is a Crawl Driver failure that prevents producing
	// any result.
	KindCrawlerError
	// KindSerializationError is an External Serializer failure.
	KindSerializationError
)

// Error is an application error tagged with a Kind, wrapping an optional
// underlying cause. UserMsg is safe to return to the client; Err is logged
// but never serialized.
type Error struct {
	Kind    Kind
	UserMsg string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMsg, e.Err)
	}
	return e.UserMsg
}

func (e *Error) Unwrap() error { return e.Err }

// BadRequest builds a KindBadRequest error.
func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, UserMsg: msg}
}

// NotFound builds a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, UserMsg: msg}
}

// Store wraps a KV Store Adapter failure.
func Store(msg string, err error) *Error {
	return &Error{Kind: KindStoreError, UserMsg: msg, Err: err}
}

// Directory wraps a Directory Client failure.
func Directory(msg string, err error) *Error {
	return &Error{Kind: KindDirectoryError, UserMsg: msg, Err: err}
}

// Crawler wraps a Crawl Driver failure.
func Crawler(msg string, err error) *Error {
	return &Error{Kind: KindCrawlerError, UserMsg: msg, Err: err}
}

// Serialization wraps an External Serializer failure.
func Serialization(msg string, err error) *Error {
	return &Error{Kind: KindSerializationError, UserMsg: msg, Err: err}
}
