package session

import "errors"

var ErrClosed = errors.New("session: scheduler is closed")
