// Package control lets other processes drive a running countdown through a
// named pipe.
package control

import "errors"

// ErrUnsupported is returned by Open on platforms without named pipes.
var ErrUnsupported = errors.New("control pipe is not supported on this platform")

// Dispatcher runs a single text command such as "pause".
type Dispatcher interface {
	Dispatch(cmd string) error
}
