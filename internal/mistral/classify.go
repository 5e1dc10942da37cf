package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx gateway response. It is the only provider error
// shape that crosses the client boundary; callers classify it with
// Classify instead of sniffing message strings at call sites.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mistral API returned status %d: %s", e.StatusCode, e.Message)
}

func newAPIError(resp *http.Response) *APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))

	// The API wraps errors a couple of ways; fall back to the raw body.
	var wrapped struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &wrapped); err == nil {
		switch {
		case wrapped.Message != "":
			msg = wrapped.Message
		case wrapped.Error.Message != "":
			msg = wrapped.Error.Message
		case wrapped.Detail != "":
			msg = wrapped.Detail
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// Kind buckets gateway failures for error handling and user messaging.
type Kind int

const (
	KindUnknown Kind = iota

	// KindAuth means the gateway rejected the credential itself.
	KindAuth

	// KindPermission means the credential is valid but lacks access.
	KindPermission

	// KindQuota means a rate or usage limit was hit.
	KindQuota

	// KindBilling means the account has a credits or billing problem.
	KindBilling

	// KindTransient means the call may succeed if retried.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindPermission:
		return "permission"
	case KindQuota:
		return "quota"
	case KindBilling:
		return "billing"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Classify maps an error from any client call onto a Kind. Status codes are
// authoritative; the response message is only consulted to tell quota from
// billing problems, which the gateway reports under the same codes.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindUnknown
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		// Network-level failures (connection refused, timeouts) are
		// worth one more try.
		return KindTransient
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return KindAuth
	case apiErr.StatusCode == http.StatusPaymentRequired:
		return KindBilling
	case apiErr.StatusCode == http.StatusForbidden:
		if strings.Contains(msg, "credit") || strings.Contains(msg, "billing") {
			return KindBilling
		}
		return KindPermission
	case apiErr.StatusCode == http.StatusTooManyRequests:
		if strings.Contains(msg, "credit") || strings.Contains(msg, "billing") {
			return KindBilling
		}
		return KindQuota
	case apiErr.StatusCode >= 500:
		return KindTransient
	case strings.Contains(msg, "quota") || strings.Contains(msg, "limit"):
		return KindQuota
	default:
		return KindUnknown
	}
}
