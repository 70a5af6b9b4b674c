package engine

import "errors"

// ErrBusy means the bounded wait for entity locks expired. The operation had
// no effect; the caller may retry.
var ErrBusy = errors.New("world busy, retry")
