package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned when neither explicit arguments nor
	// environment variables supply a client id and secret.
	ErrMissingCredentials = &ConfigError{Reason: "client id and client secret are required"}
	// ErrMissingEndpoint is returned when a request names neither an
	// endpoint path nor an absolute URL.
	ErrMissingEndpoint = &ConfigError{Reason: "either endpoint or url must be provided"}
	// ErrNoRefreshToken is returned when a refresh is attempted without a
	// refresh token on hand.
	ErrNoRefreshToken = &AuthError{Reason: "no refresh token available"}
	// ErrTokenNotFound is returned by a TokenStore before the first
	// successful exchange.
	ErrTokenNotFound = errors.New("token not found")
)

// ConfigError reports invalid or missing client-side configuration: absent
// credentials, a request without a target, or mutually exclusive parameters
// supplied together. It is always raised before any network call.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// AuthError reports a failure of the authorization-code flow or a token
// refresh. Body holds the provider's response text verbatim when the token
// endpoint answered with a non-200 status.
type AuthError struct {
	StatusCode int
	Body       string
	Reason     string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("auth: token endpoint returned status %d: %q", e.StatusCode, e.Body)
	}
	return "auth: " + e.Reason
}

// RequestError reports a non-200 response from a REST or streaming call, or
// a malformed JSON line on a stream. Body carries the raw provider response
// text (or the offending line) without reinterpretation.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request: invalid JSON received: %q", e.Body)
	}
	return fmt.Sprintf("request failed with status code %d and message: %q", e.StatusCode, e.Body)
}
