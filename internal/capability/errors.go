package capability

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all backends. Modules translate raw HTTP and
// parsing failures into these so callers can branch without knowing which
// website produced them.
var (
	ErrNotFound             = errors.New("record not found")
	ErrNotSupported         = errors.New("operation not supported by this backend")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrSiteUnavailable      = errors.New("site unavailable")
	ErrNotLoggedIn          = errors.New("not logged in")

	// ErrCaptchaRequired is terminal: the site asked for a CAPTCHA and we
	// never attempt to solve one.
	ErrCaptchaRequired = errors.New("captcha required")
)

// BackendError wraps a failure with the backend and operation it came from.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// WrapErr annotates err with backend and operation context. A nil err
// returns nil.
func WrapErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Backend: backend, Op: op, Err: err}
}
