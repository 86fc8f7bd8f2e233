package worldbank

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// StatusError is returned when the API responds with a status other than 200.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsStatusError returns the StatusError wrapped in err, if any.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
