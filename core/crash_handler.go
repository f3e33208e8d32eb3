package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

var crashReset atomic.Pointer[func()]

// SetCrashReset registers the host cleanup that runs before a crash report is printed
// Hosts owning the terminal or a window register their Fini here
func SetCrashReset(fn func()) {
	if fn == nil {
		crashReset.Store(nil)
		return
	}
	crashReset.Store(&fn)
}

// HandleCrash is the unified panic handler that restores the host display and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if reset := crashReset.Load(); reset != nil {
		(*reset)()
	}

	os.Stdout.Sync()

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure host cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
