package api

import "fmt"

// TransportError covers network failures and bodies that could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// RejectionError is returned when the server answered but refused the request,
// either with a non-2xx status or a {"success": false} body.
type RejectionError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
}
