package remote

import "strconv"

// ConnectionError indicates no client session is configured. The call was
// rejected before any network attempt.
type ConnectionError struct {
	Reason string
}

func (e ConnectionError) Error() string {
	return "remote: not connected: " + e.Reason
}

// RemoteError indicates the backend rejected a call. Message carries the
// backend-supplied text when one was returned.
type RemoteError struct {
	Status  int
	Message string
}

func (e RemoteError) Error() string {
	if e.Status == 0 {
		return "remote: " + e.Message
	}
	return "remote: status " + strconv.Itoa(e.Status) + ": " + e.Message
}
