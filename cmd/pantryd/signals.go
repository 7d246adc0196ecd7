package main

import "os"

// shutdownSignals trigger a graceful drain. signals_unix.go adds SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}
