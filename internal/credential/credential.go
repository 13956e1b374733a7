// Package credential decodes the bearer token issued to a student by the
// fitness-tracking service. The token is only decoded, never verified:
// the caller owns it and the server is the one checking the signature.
package credential

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const identityClaim = "userid"

// Documented failure reasons.
const (
	ReasonSegmentCount    = "wrong segment count"
	ReasonUndecodable     = "undecodable"
	ReasonMissingIdentity = "missing identity claim"
)

// Claims is the decoded payload of a token.
type Claims map[string]any

// InvalidTokenError reports a token the pipeline cannot use, with one of
// the documented reasons.
type InvalidTokenError struct {
	Reason string
	Err    error
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token: %s", e.Reason)
}

func (e *InvalidTokenError) Unwrap() error { return e.Err }

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode splits a three-segment bearer token and parses its payload
// segment into claims. It tolerates both base64 alphabets, padded or
// not, and requires the identity claim to be present.
func Decode(token string) (Claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, &InvalidTokenError{Reason: ReasonSegmentCount}
	}

	payload, err := decodeSegment(segments[1])
	if err != nil {
		return nil, &InvalidTokenError{Reason: ReasonUndecodable, Err: err}
	}

	// UseNumber keeps numeric ids exact; float64 would turn large ones
	// into scientific notation
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var claims Claims
	if err := dec.Decode(&claims); err != nil {
		return nil, &InvalidTokenError{Reason: ReasonUndecodable, Err: err}
	}

	if _, ok := claims[identityClaim]; !ok {
		return nil, &InvalidTokenError{Reason: ReasonMissingIdentity}
	}
	return claims, nil
}

// decodeSegment first tries the JWT parser's own segment decoding
// (URL-safe alphabet, padding tolerated), then normalizes the standard
// alphabet onto the URL-safe one.
func decodeSegment(segment string) ([]byte, error) {
	if data, err := segmentParser.DecodeSegment(segment); err == nil {
		return data, nil
	}

	normalized := strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimRight(segment, "="))
	return base64.RawURLEncoding.DecodeString(normalized)
}

// StudentID returns the identity claim as a string.
func (c Claims) StudentID() (string, error) {
	value, ok := c[identityClaim]
	if !ok {
		return "", &InvalidTokenError{Reason: ReasonMissingIdentity}
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}
