package client

import "fmt"

// ClientError wraps a failed client operation with a description of what
// was being attempted; the transport-level cause is retained.
type ClientError struct {
	Desc string
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s failed", e.Desc)
}

func (e *ClientError) Unwrap() error { return e.Err }

// explanations maps known response codes to human explanations. Codes
// not listed get none.
var explanations = map[int]string{
	-6:    "tenant likely invalid or expired",
	40005: "token likely invalid or expired",
}

// ResponseError reports a response whose envelope code was not the
// success code.
type ResponseError struct {
	Endpoint string
	Code     int
	Msg      string
}

func (e *ResponseError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("unexpected response from '%s': code %d, msg '%s'", e.Endpoint, e.Code, e.Msg)
	}
	return fmt.Sprintf("unexpected response from '%s': code %d", e.Endpoint, e.Code)
}

// Explanation returns a human reading of known codes, empty otherwise.
func (e *ResponseError) Explanation() string {
	return explanations[e.Code]
}

func (e *ResponseError) Hint() string { return e.Explanation() }
