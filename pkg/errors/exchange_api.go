// Package errors provides typed errors for the exchange connector.
package errors

import (
	"fmt"
)

// CryptoApiClientError is the root of the library's error taxonomy.
// Every error the library raises deliberately (as opposed to transport
// errors surfaced unchanged) implements this interface so callers can
// distinguish library-raised failures from arbitrary wrapped errors.
type CryptoApiClientError interface {
	error
	cryptoApiClientError()
}

// ExchangeApiError represents a response that its HTTP status or the
// exchange's own envelope identifies as a failure (some envelopes report
// failure on an HTTP 200). It always carries the raw response
// body so callers can do postmortem debugging without re-requesting.
type ExchangeApiError struct {
	// ErrorDescription is a human-readable summary including exchange
	// name, HTTP status code, API status code, and API message.
	ErrorDescription string `json:"error_description"`

	// HTTPStatusCode is the transport-level status code, if known.
	HTTPStatusCode *int `json:"http_status_code,omitempty"`

	// APIStatusCode1 and APIStatusCode2 carry exchange-specific error
	// codes; exchanges whose envelope nests two status fields (bitFlyer's
	// top-level and data-level codes) populate both.
	APIStatusCode1 *string `json:"api_status_code_1,omitempty"`
	APIStatusCode2 *string `json:"api_status_code_2,omitempty"`

	// APIErrorMessage1 and APIErrorMessage2 mirror the status code pair.
	APIErrorMessage1 *string `json:"api_error_message_1,omitempty"`
	APIErrorMessage2 *string `json:"api_error_message_2,omitempty"`

	// ResponseBody is the raw, unparsed response body text.
	ResponseBody string `json:"response_body,omitempty"`
}

func (e *ExchangeApiError) cryptoApiClientError() {}

// Error implements the error interface.
func (e *ExchangeApiError) Error() string {
	return e.ErrorDescription
}

// NewExchangeApiError builds an ExchangeApiError with a composed
// ErrorDescription, per the response-validator contract in §4.9.
func NewExchangeApiError(exchange string, httpStatusCode int, apiStatusCode1, apiErrorMessage1, responseBody string) *ExchangeApiError {
	status := httpStatusCode
	var code1, msg1 *string
	if apiStatusCode1 != "" {
		code1 = &apiStatusCode1
	}
	if apiErrorMessage1 != "" {
		msg1 = &apiErrorMessage1
	}

	desc := fmt.Sprintf("[%s] HTTP %d", exchange, httpStatusCode)
	if apiStatusCode1 != "" {
		desc += fmt.Sprintf(" api_code=%s", apiStatusCode1)
	}
	if apiErrorMessage1 != "" {
		desc += fmt.Sprintf(": %s", apiErrorMessage1)
	}

	return &ExchangeApiError{
		ErrorDescription: desc,
		HTTPStatusCode:   &status,
		APIStatusCode1:   code1,
		APIErrorMessage1: msg1,
		ResponseBody:     responseBody,
	}
}

// RetryLimitExceededError is raised when the retry strategy exhausts
// its configured attempt budget without a successful call.
type RetryLimitExceededError struct {
	// Attempts is the number of attempts actually made.
	Attempts int `json:"attempts"`

	// LastErr is the error from the final attempt.
	LastErr error `json:"-"`
}

func (e *RetryLimitExceededError) cryptoApiClientError() {}

// Error implements the error interface.
func (e *RetryLimitExceededError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("retry limit exceeded after %d attempt(s): %v", e.Attempts, e.LastErr)
	}
	return fmt.Sprintf("retry limit exceeded after %d attempt(s)", e.Attempts)
}

// Unwrap returns the error from the final attempt.
func (e *RetryLimitExceededError) Unwrap() error {
	return e.LastErr
}

// NewRetryLimitExceededError creates a new RetryLimitExceededError.
func NewRetryLimitExceededError(attempts int, lastErr error) *RetryLimitExceededError {
	return &RetryLimitExceededError{Attempts: attempts, LastErr: lastErr}
}

// RateLimitApproachingError is raised by a rate limiter's before-request
// hook when the local or shared counter has already reached its
// configured ceiling for the current window.
type RateLimitApproachingError struct {
	// Label identifies which limiter tripped.
	Label string `json:"label"`

	// Count is the counter value observed at trip time.
	Count int64 `json:"count"`

	// Max is the configured ceiling.
	Max int64 `json:"max"`

	// WindowSeconds is the limiter's window length.
	WindowSeconds int `json:"window_seconds"`
}

func (e *RateLimitApproachingError) cryptoApiClientError() {}

// Error implements the error interface.
func (e *RateLimitApproachingError) Error() string {
	return fmt.Sprintf("URL pattern limit exceeded: %d/%d", e.Count, e.Max)
}

// NewRateLimitApproachingError creates a new RateLimitApproachingError.
func NewRateLimitApproachingError(label string, count, max int64, windowSeconds int) *RateLimitApproachingError {
	return &RateLimitApproachingError{Label: label, Count: count, Max: max, WindowSeconds: windowSeconds}
}

// SessionClosedError is raised by any API access on a closed Session.
type SessionClosedError struct{}

func (e *SessionClosedError) cryptoApiClientError() {}

// Error implements the error interface.
func (e *SessionClosedError) Error() string {
	return "Session is already closed"
}

// NewSessionClosedError creates a new SessionClosedError.
func NewSessionClosedError() *SessionClosedError {
	return &SessionClosedError{}
}
