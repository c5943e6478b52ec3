package snapshot

import "errors"

var ErrClosed = errors.New("snapshot repository is closed")
