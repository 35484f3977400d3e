package openrouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/petal-labs/halo/core"
)

// errNoChoices is returned when a response carries no choices to decode.
var errNoChoices = errors.New("response contained no choices")

// normalizeError converts an HTTP error response to a ProviderError with the
// appropriate sentinel. Any 4xx is fatal for retry purposes; transport
// failures and 5xx are retryable (see core/retry.go).
func normalizeError(status int, body []byte, requestID string) error {
	var errResp orErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	var sentinel error
	switch {
	case status == http.StatusBadRequest:
		sentinel = core.ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = core.ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = core.ErrNotFound
	case status == http.StatusTooManyRequests:
		sentinel = core.ErrRateLimited
	case status >= 500:
		sentinel = core.ErrServer
	case status >= 400:
		sentinel = core.ErrBadRequest
	default:
		sentinel = core.ErrServer
	}

	return &core.ProviderError{
		Provider:  "openrouter",
		Status:    status,
		RequestID: requestID,
		Code:      codeString(errResp.Error.Code),
		Message:   message,
		Err:       sentinel,
	}
}

// codeString renders the error code, which arrives as a JSON number or
// string depending on the failure.
func codeString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// newNetworkError creates a ProviderError for transport-level failures.
// Status 0 marks the failure as never having produced an HTTP response.
func newNetworkError(err error) error {
	return &core.ProviderError{
		Provider: "openrouter",
		Code:     core.CodeNetworkError,
		Message:  err.Error(),
		Err:      core.ErrNetwork,
	}
}

// newDecodeError creates a ProviderError for JSON decode failures.
func newDecodeError(err error) error {
	return &core.ProviderError{
		Provider: "openrouter",
		Message:  err.Error(),
		Err:      core.ErrDecode,
	}
}
