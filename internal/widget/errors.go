package widget

import "fmt"

// Numeric error codes reported through the error notification.
const (
	ErrCodeInvalidPosition = 6482
	ErrCodeInvalidFEN      = 7263
	ErrCodeInvalidMove     = 2826
)

// Error is an invalid-input error from a public entry point.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tinyboard error %d: %s", e.Code, e.Msg)
}

// fail emits the error notification and returns the matching error value.
func (b *Board) fail(code int, format string, args ...any) error {
	err := &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
	if b.events.OnError != nil {
		b.events.OnError(err.Code, err.Msg)
	}
	return err
}
