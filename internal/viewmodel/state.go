package viewmodel

import (
	"fmt"

	"github.com/pkg/errors"
)

// State of a list screen
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

var (
	ErrNotRetryable      = errors.New("retry is only possible after a failed load")
	ErrDeleteInProgress  = errors.New("another delete is still in progress")
	ErrDeleteUnsupported = errors.New("this list does not support deletion")
	ErrUnmounted         = errors.New("screen is no longer mounted")
)

// Runner executes fetches off the caller's goroutine. *ants.Pool satisfies it.
type Runner interface {
	Submit(task func()) error
}

// GoRunner starts a plain goroutine per task.
type GoRunner struct{}

func (GoRunner) Submit(task func()) error {
	go task()
	return nil
}
