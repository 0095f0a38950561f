package o11y

import "errors"

type warning struct {
	msg string
}

func (w *warning) Error() string {
	return w.msg
}

// NewWarning returns an error that spans record as a warning rather than a failure.
// Each call returns a distinct error.
func NewWarning(msg string) error {
	return &warning{msg: msg}
}

// IsWarning reports whether any error in err's chain is a warning.
func IsWarning(err error) bool {
	var w *warning
	return errors.As(err, &w)
}
