package api

import (
	"net/http"

	"github.com/safastep/console/internal/domain"
)

// rejected converts a backend rejection (non-2xx status or success:false)
// into a domain error. The server-provided detail is preferred as the
// user-facing message; the generic fallback is used when the body carried
// none.
func rejected(op string, status int, detail string) error {
	code := statusToCode(status)
	if detail == "" {
		detail = "The SafaStep API rejected the request."
	}
	return domain.Errorf(code, op, "%s", detail)
}

// statusToCode maps HTTP statuses onto domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.EINVALID
	case http.StatusUnauthorized:
		return domain.EUNAUTHORIZED
	case http.StatusForbidden:
		return domain.EFORBIDDEN
	case http.StatusNotFound:
		return domain.ENOTFOUND
	case http.StatusConflict:
		return domain.ECONFLICT
	case http.StatusTooManyRequests:
		return domain.ERATELIMIT
	default:
		if status >= 200 && status < 300 {
			// 2xx with success:false carries a business rejection.
			return domain.EINVALID
		}
		return domain.EINTERNAL
	}
}
