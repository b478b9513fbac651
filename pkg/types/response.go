// Package types holds the wire envelopes every API response uses.
package types

// SuccessEnvelope wraps all 2xx payloads. Handlers never write bare
// bodies; clients can rely on the data key being present.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error shape. Message must be safe to
// show to an end user; internal causes stay in the logs.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps non-2xx responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
