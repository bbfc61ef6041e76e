package media

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrInvalidCatalog indicates that the catalog payload could not be decoded.
	ErrInvalidCatalog = errors.New("invalid catalog payload")
	// ErrEmptyURL indicates that a request was made without a URL.
	ErrEmptyURL = errors.New("url is empty")
)
