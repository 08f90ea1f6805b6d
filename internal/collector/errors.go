package collector

import (
	"errors"
	"fmt"
)

// RequestError marks a transport failure or a non-2xx response.
type RequestError struct {
	URL        string
	StatusCode int // zero for transport failures
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// isStatusError reports whether err is a response with a non-2xx status.
func isStatusError(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode == 0 {
		return false
	}
	return reqErr.StatusCode < 200 || reqErr.StatusCode > 299
}
