package api

import "fmt"

// RequestError means the request never produced a response (bad URL, refused
// connection, cancelled context...).
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError means a response arrived but its body could not be used:
// unreadable, not JSON, the wrong shape, or rejected by Client.Check.
// The status code is informational only.
type DecodeError struct {
	Method  string
	URL     string
	Status  int
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%s %s (status %d): %v", e.Method, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s (status %d): %v: %q", e.Method, e.URL, e.Status, e.Err, e.Snippet)
}

func (e *DecodeError) Unwrap() error { return e.Err }
