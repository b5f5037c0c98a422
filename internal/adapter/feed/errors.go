package feed

import "fmt"

// FetchError reports a failed retrieval for one locator: a non-2xx status, a
// transport failure, or a timeout.
type FetchError struct {
	Locator    string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetch %s: timed out", e.Locator)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: status %d", e.Locator, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a feed document that could not be parsed.
type ParseError struct {
	Locator string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Locator, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
