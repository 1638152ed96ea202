package hal

import "errors"

// ErrQuit is returned from RunInput when the host asks the window to close;
// main treats it as a clean shutdown.
var ErrQuit = errors.New("quit")
