package plaqueapi

import "fmt"

// NetworkError wraps a transport failure (DNS, refused connection,
// timeout) talking to the catalog API.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("plaque api unreachable: %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("plaque api returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("plaque api returned %d for %s", e.StatusCode, e.URL)
}

// ParseError is a syntactically invalid response body.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("plaque api response malformed: %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
