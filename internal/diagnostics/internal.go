package diagnostics

import (
	"errors"
	"fmt"
)

// ErrInternal matches every *InternalError via errors.Is.
var ErrInternal = errors.New("internal consistency failure")

// InternalError signals that a pass ran on input an earlier pass should have
// rejected or rewritten. It is raised with panic (see Abort) and never
// reported as a user diagnostic.
type InternalError struct {
	Code      ErrorCode
	Message   string
	Reference uint64
}

func (e *InternalError) Error() string {
	if e.Reference != 0 {
		return fmt.Sprintf("%s: %s (node %d)", e.Code, e.Message, e.Reference)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// Abort raises an InternalError.
func Abort(code ErrorCode, ref uint64, format string, args ...any) {
	panic(&InternalError{Code: code, Message: fmt.Sprintf(format, args...), Reference: ref})
}

// RecoverInternal turns an InternalError panic into *errp. Other panics are
// re-raised. Use as: defer diagnostics.RecoverInternal(&err)
func RecoverInternal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if ie, ok := r.(*InternalError); ok {
		*errp = ie
		return
	}
	panic(r)
}
