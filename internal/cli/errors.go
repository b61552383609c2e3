package cli

import "errors"

// ErrUnsupportedFile indicates a file with no registered scanner.
var ErrUnsupportedFile = errors.New("no scanner for file type")
