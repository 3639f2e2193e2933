package frame

import "github.com/cockroachdb/errors"

// ErrFatal marks every error returned by the presenter. Nothing it returns is
// retryable.
var ErrFatal = errors.New("frame: unrecoverable presentation error")

var ErrClosed = errors.New("frame: presenter closed")

func fatal(err error, step string) error {
	return errors.Mark(errors.Wrap(err, step), ErrFatal)
}
