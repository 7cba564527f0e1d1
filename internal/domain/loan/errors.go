package loan

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrExceedsBalance  = errors.New("repayment exceeds remaining balance")
	ErrNotFound        = errors.New("loan not found")
	ErrConflict        = errors.New("concurrent update conflict")
)

// OpError carries the operation and loan id alongside one of the sentinels above.
type OpError struct {
	Op     string
	LoanID string
	Err    error
	Detail string
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.LoanID != "" {
		msg += " " + e.LoanID
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, loanID string, err error, format string, args ...any) error {
	return &OpError{Op: op, LoanID: loanID, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches op and loan id to err unless it already carries them.
func Wrap(op, loanID string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	return &OpError{Op: op, LoanID: loanID, Err: err}
}
