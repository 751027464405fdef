package xmlast

import "fmt"

// SyntaxError reports malformed XML input. Parse returning a non-nil error
// always means "XML unreadable or not well-formed" — the Fatal case in the
// error taxonomy, with no partial output produced.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}
