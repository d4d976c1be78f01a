package client

import (
	"errors"
	"fmt"
)

// ErrNoFunctionName is returned before any network activity.
var ErrNoFunctionName = errors.New("steeze-rpc: function name is required")

// TransportError is a non-200 reply. Its message is the raw response body.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string { return e.Body }

// RemoteError is a reply the server tagged as a failure. Only Call and
// CallJSONRPC return it; Invoke hands the value back verbatim.
type RemoteError struct {
	Status  string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("steeze-rpc: remote %s", e.Status)
	}
	return e.Message
}
