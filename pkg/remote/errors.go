package remote

import "fmt"

// RemoteError wraps a non-200 response from a registry server. It is an
// authoritative answer, not a transport failure, so request rotation does
// not retry it against another server.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("naming server error; status: %d, message: %s", e.Status, e.Body)
}

// ErrAllServersFailed is wrapped into the error returned once every server
// in the list has failed with a transport error for a single request.
type ErrAllServersFailed struct {
	Attempts int
}

func (e *ErrAllServersFailed) Error() string {
	return fmt.Sprintf("retry %d times http request failed", e.Attempts)
}
