package services

import (
	"fmt"
	"strings"
)

// OpError reports a failed status operation. Components lists the ids whose update
// failed, when the operation wrote to Statuspage.
type OpError struct {
	Op         string
	Msg        string
	Components []string
	Err        error
}

func (e *OpError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Op, e.Msg)
	if len(e.Components) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Components, ","))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(op, msg string, err error) error {
	return &OpError{Op: op, Msg: msg, Err: err}
}
