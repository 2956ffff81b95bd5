package balance

import "fmt"

// QueryError is a failed balance query: a non-2xx response or a payload
// whose status is not "success". Message carries the endpoint's
// error_message when one was reported, otherwise the raw body or HTTP
// status.
type QueryError struct {
	StatusCode int
	Message    string
}

func (e *QueryError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("balance query failed: %s", e.Message)
	}
	return fmt.Sprintf("balance query failed: HTTP %d", e.StatusCode)
}
